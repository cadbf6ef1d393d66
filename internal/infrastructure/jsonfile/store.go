package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

// Store persists a whole collection as one indented JSON array. Writes go to a
// temporary file that is renamed over the target, so readers never observe a
// partially written collection.
type Store[T any] struct {
	path string
	mu   sync.RWMutex
}

func NewStore[T any](path string) *Store[T] {
	return &Store[T]{path: path}
}

func (s *Store[T]) Path() string { return s.path }

// LoadAll returns an empty collection when the file does not exist yet.
func (s *Store[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	items := []T{}
	if len(b) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return items, nil
}

func (s *Store[T]) SaveAll(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// File names inside the data directory.
const (
	PatientsFile     = "patients.json"
	DoctorsFile      = "doctors.json"
	AppointmentsFile = "appointments.json"
)

// Stores is the set of collections kept under one data directory.
type Stores struct {
	Patients     *Store[entity.Patient]
	Doctors      *Store[entity.Doctor]
	Appointments *Store[entity.Appointment]
}

func Open(dir string) Stores {
	return Stores{
		Patients:     NewStore[entity.Patient](filepath.Join(dir, PatientsFile)),
		Doctors:      NewStore[entity.Doctor](filepath.Join(dir, DoctorsFile)),
		Appointments: NewStore[entity.Appointment](filepath.Join(dir, AppointmentsFile)),
	}
}
