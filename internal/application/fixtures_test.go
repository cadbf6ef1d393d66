package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/idgen"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/memory"
)

// Wednesday 2025-06-11 10:30.
var wednesday = time.Date(2025, 6, 11, 10, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type recordingPublisher struct {
	mu     sync.Mutex
	events []application.AppointmentEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := body.(application.AppointmentEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) types() []application.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]application.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// failingStore wraps a store and fails SaveAll while failSave is set. saveErr,
// when non-nil, is returned from SaveAll instead of errDiskFull.
type failingStore[T any] struct {
	inner interface {
		LoadAll(context.Context) ([]T, error)
		SaveAll(context.Context, []T) error
	}
	failSave bool
	failLoad bool
	saveErr  error
}

var errDiskFull = errors.New("disk full")

func (s *failingStore[T]) LoadAll(ctx context.Context) ([]T, error) {
	if s.failLoad {
		return nil, errDiskFull
	}
	return s.inner.LoadAll(ctx)
}

func (s *failingStore[T]) SaveAll(ctx context.Context, items []T) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.failSave {
		return errDiskFull
	}
	return s.inner.SaveAll(ctx, items)
}

// microsecondStore keeps timestamps the way Postgres timestamptz does.
type microsecondStore struct {
	inner *memory.AppointmentStore
}

func (s *microsecondStore) LoadAll(ctx context.Context) ([]entity.Appointment, error) {
	return s.inner.LoadAll(ctx)
}

func (s *microsecondStore) SaveAll(ctx context.Context, items []entity.Appointment) error {
	out := make([]entity.Appointment, len(items))
	for i, a := range items {
		a = a.Clone()
		a.CreatedAt = a.CreatedAt.Truncate(time.Microsecond)
		for _, ts := range []*time.Time{a.CancelledAt, a.CompletedAt} {
			if ts != nil {
				*ts = ts.Truncate(time.Microsecond)
			}
		}
		out[i] = a
	}
	return s.inner.SaveAll(ctx, out)
}

// lockCheckingPublisher records whether the appointments lock was free while
// an event was being published.
type lockCheckingPublisher struct {
	locker interface {
		Lock(ctx context.Context, key string) (func(), error)
	}
	mu      sync.Mutex
	blocked int
	seen    int
}

func (p *lockCheckingPublisher) PublishJSON(ctx context.Context, _ any) error {
	c, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	unlock, err := p.locker.Lock(c, "appointments")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen++
	if err != nil {
		p.blocked++
		return nil
	}
	unlock()
	return nil
}

var (
	ana = entity.Patient{ID: "P001", Name: "Ana Pérez", Age: 34, Phone: "555-123-4567", Email: "ana@example.com", RegistrationDate: "2025-01-10"}
	bob = entity.Patient{ID: "P002", Name: "Bob Smith", Age: 51, Phone: "555-987-6543", Email: "bob@example.com", RegistrationDate: "2025-02-01"}

	// works Mondays 09:00 to 12:00
	drMonday = entity.Doctor{ID: "D001", Name: "Dr. Lucía Gómez", Specialty: "Cardiology",
		WorkStart: "09:00", WorkEnd: "12:00", AvailableDays: []entity.Weekday{entity.Monday}}
	// works every day 08:00 to 18:00
	drDaily = entity.Doctor{ID: "D002", Name: "Dr. Omar Ruiz", Specialty: "Pediatrics",
		WorkStart: "08:00", WorkEnd: "18:00", AvailableDays: []entity.Weekday{
			entity.Monday, entity.Tuesday, entity.Wednesday, entity.Thursday,
			entity.Friday, entity.Saturday, entity.Sunday,
		}}
)

type fixture struct {
	clock        *fixedClock
	patients     *memory.PatientStore
	doctors      *memory.DoctorStore
	appointments *memory.AppointmentStore
	events       *recordingPublisher
	locker       *memory.KeyedLocker
	sched        *application.Scheduler
}

func newFixture(t *testing.T, seed ...entity.Appointment) *fixture {
	t.Helper()
	f := &fixture{
		clock:        &fixedClock{t: wednesday},
		patients:     memory.NewStore(ana, bob),
		doctors:      memory.NewStore(drMonday, drDaily),
		appointments: memory.NewStore(seed...),
		events:       &recordingPublisher{},
		locker:       memory.NewKeyedLocker(),
	}
	f.sched = application.NewScheduler(f.appointments, f.patients, f.doctors,
		idgen.Sequential{}, f.locker, f.clock, nil)
	f.sched.Events = f.events
	return f
}

func (f *fixture) stored(t *testing.T) []entity.Appointment {
	t.Helper()
	all, err := f.appointments.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return all
}
