package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
)

// Collection keys used for locking.
const (
	lockAppointments = "appointments"
	lockPatients     = "patients"
	lockDoctors      = "doctors"
)

// ID prefixes per collection.
const (
	PrefixPatient     = "P"
	PrefixDoctor      = "D"
	PrefixAppointment = "C"
)

// Clock supplies the authoritative "now" for date and time checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// storedTime is t in UTC without its monotonic reading or sub-microsecond
// digits, so a stamped record equals what any store (Postgres keeps
// microseconds) reads back.
func storedTime(t time.Time) time.Time {
	return t.Round(0).Truncate(time.Microsecond).UTC()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func lockCollection(ctx context.Context, locker repo.Locker, key string) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	unlock, err := locker.Lock(ctx, key)
	if err != nil {
		return nil, storageError("lock "+key, err)
	}
	return unlock, nil
}

func orNop(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		return helpers.NewNopLogger()
	}
	return logger
}

func collectIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
