package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	repo "github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
)

// PatientIndex is a full-text index over patients. Search returns matching ids
// ordered by relevance.
type PatientIndex interface {
	Index(ctx context.Context, p entity.Patient) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// PatientInput carries the editable patient fields.
type PatientInput struct {
	Name  string
	Age   int
	Phone string
	Email string
}

const searchSize = 20

type PatientService struct {
	Repo   repo.PatientRepository
	IDs    repo.IDAllocator
	Locker repo.Locker
	Clock  Clock
	Logger *logrus.Logger
	Index  PatientIndex // optional
}

func NewPatientService(r repo.PatientRepository, ids repo.IDAllocator, locker repo.Locker, clock Clock, logger *logrus.Logger) *PatientService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &PatientService{Repo: r, IDs: ids, Locker: locker, Clock: clock, Logger: orNop(logger)}
}

// Register validates in, allocates a P-prefixed id and stamps today's date.
func (s *PatientService) Register(ctx context.Context, in PatientInput) (*entity.Patient, error) {
	p := entity.Patient{
		Name:             strings.TrimSpace(in.Name),
		Age:              in.Age,
		Phone:            strings.TrimSpace(in.Phone),
		Email:            strings.TrimSpace(in.Email),
		RegistrationDate: s.Clock.Now().Format(entity.DateLayout),
	}
	if problems := p.Validate(); problems != nil {
		return nil, invalidInput(problems)
	}

	unlock, err := lockCollection(ctx, s.Locker, lockPatients)
	if err != nil {
		return nil, err
	}
	defer unlock()

	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	if emailTaken(patients, p.Email, "") {
		return nil, newError(KindEmailTaken, "a patient with email %s is already registered", p.Email)
	}
	p.ID = s.IDs.NextID(PrefixPatient, collectIDs(patients, patientID))
	if err := s.Repo.SaveAll(ctx, append(patients, p)); err != nil {
		return nil, s.saveFailure(p.Email, err)
	}

	s.Logger.WithField("patient_id", p.ID).Info("patient registered")
	s.index(ctx, p)
	return &p, nil
}

// Update replaces the editable fields of patient id.
func (s *PatientService) Update(ctx context.Context, id string, in PatientInput) (*entity.Patient, error) {
	unlock, err := lockCollection(ctx, s.Locker, lockPatients)
	if err != nil {
		return nil, err
	}
	defer unlock()

	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	i := slices.IndexFunc(patients, func(p entity.Patient) bool { return p.ID == id })
	if i < 0 {
		return nil, newError(KindPatientNotFound, "patient %s does not exist", id)
	}
	p := patients[i]
	p.Name = strings.TrimSpace(in.Name)
	p.Age = in.Age
	p.Phone = strings.TrimSpace(in.Phone)
	p.Email = strings.TrimSpace(in.Email)
	if problems := p.Validate(); problems != nil {
		return nil, invalidInput(problems)
	}
	if emailTaken(patients, p.Email, id) {
		return nil, newError(KindEmailTaken, "a patient with email %s is already registered", p.Email)
	}
	patients[i] = p
	if err := s.Repo.SaveAll(ctx, patients); err != nil {
		return nil, s.saveFailure(p.Email, err)
	}

	s.Logger.WithField("patient_id", id).Info("patient updated")
	s.index(ctx, p)
	return &p, nil
}

func (s *PatientService) Get(ctx context.Context, id string) (*entity.Patient, error) {
	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	for _, p := range patients {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, newError(KindPatientNotFound, "patient %s does not exist", id)
}

func (s *PatientService) List(ctx context.Context) ([]entity.Patient, error) {
	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	return patients, nil
}

// Delete removes the patient record. Appointments that reference it are kept.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	unlock, err := lockCollection(ctx, s.Locker, lockPatients)
	if err != nil {
		return err
	}
	defer unlock()

	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return s.storageFailure("load patients", err)
	}
	i := slices.IndexFunc(patients, func(p entity.Patient) bool { return p.ID == id })
	if i < 0 {
		return newError(KindPatientNotFound, "patient %s does not exist", id)
	}
	if err := s.Repo.SaveAll(ctx, slices.Delete(patients, i, i+1)); err != nil {
		return s.storageFailure("delete patient", err)
	}

	s.Logger.WithField("patient_id", id).Info("patient deleted")
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("patient_id", id).Warn("unindex patient failed")
		}
	}
	return nil
}

// Search matches query against name and email. The full-text index is used
// when configured; if it is absent or failing, a case-insensitive substring
// scan is used instead.
func (s *PatientService) Search(ctx context.Context, query string) ([]entity.Patient, error) {
	query = strings.TrimSpace(query)
	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	if query == "" {
		return patients, nil
	}

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, query, searchSize)
		if err == nil {
			byID := make(map[string]entity.Patient, len(patients))
			for _, p := range patients {
				byID[p.ID] = p
			}
			out := make([]entity.Patient, 0, len(ids))
			for _, id := range ids {
				// the index may lag behind deletes
				if p, ok := byID[id]; ok {
					out = append(out, p)
				}
			}
			return out, nil
		}
		s.Logger.WithError(err).Warn("patient index search failed, falling back to scan")
	}

	q := strings.ToLower(query)
	out := make([]entity.Patient, 0)
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Email), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Reindex pushes every stored patient to the index.
func (s *PatientService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	patients, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return 0, s.storageFailure("load patients", err)
	}
	for i, p := range patients {
		if err := s.Index.Index(ctx, p); err != nil {
			return i, err
		}
	}
	return len(patients), nil
}

func (s *PatientService) index(ctx context.Context, p entity.Patient) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		s.Logger.WithError(err).WithField("patient_id", p.ID).Warn("index patient failed")
	}
}

func (s *PatientService) storageFailure(op string, err error) error {
	s.Logger.WithError(err).WithField("op", op).Error("storage failure")
	return storageError(op, err)
}

// saveFailure reports a uniqueness rejection from the store as EmailTaken, the
// only unique patient field.
func (s *PatientService) saveFailure(email string, err error) error {
	if errors.Is(err, repo.ErrConflict) {
		return &Error{Kind: KindEmailTaken, Err: err,
			Message: fmt.Sprintf("a patient with email %s is already registered", email)}
	}
	return s.storageFailure("save patient", err)
}

func emailTaken(patients []entity.Patient, email, exceptID string) bool {
	for _, p := range patients {
		if p.ID != exceptID && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

func patientID(p entity.Patient) string { return p.ID }
