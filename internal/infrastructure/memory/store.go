package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

type cloner[T any] interface {
	Clone() T
}

// Store keeps a collection in process memory. Items are deep-copied on the way
// in and out so callers never share backing arrays with the store.
type Store[T cloner[T]] struct {
	mu    sync.RWMutex
	items []T
}

func NewStore[T cloner[T]](seed ...T) *Store[T] {
	s := &Store[T]{}
	s.items = cloneAll(seed)
	return s
}

func (s *Store[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items), nil
}

func (s *Store[T]) SaveAll(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneAll(items)
	return nil
}

func cloneAll[T cloner[T]](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

type (
	PatientStore     = Store[entity.Patient]
	DoctorStore      = Store[entity.Doctor]
	AppointmentStore = Store[entity.Appointment]
)
