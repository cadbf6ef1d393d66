package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

// Collection is whole-collection persistence: LoadAll returns every record and
// SaveAll replaces the stored collection with items. Callers do
// read-modify-write and must serialize writers themselves (see Locker).
type Collection[T any] interface {
	LoadAll(ctx context.Context) ([]T, error)
	SaveAll(ctx context.Context, items []T) error
}

// ErrConflict is wrapped by SaveAll when the store rejects items that break a
// uniqueness rule it enforces itself (an active slot, a patient email).
var ErrConflict = errors.New("unique constraint violated")

// PatientRepository stores patients.
type PatientRepository interface {
	Collection[entity.Patient]
}

// DoctorRepository stores doctors.
type DoctorRepository interface {
	Collection[entity.Doctor]
}

// AppointmentRepository stores appointments.
type AppointmentRepository interface {
	Collection[entity.Appointment]
}

// IDAllocator issues human-readable sequential identifiers per prefix.
type IDAllocator interface {
	NextID(prefix string, existing []string) string
}

// Locker serializes read-modify-write sequences on a named collection.
// The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
