package application

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	repo "github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
)

// PhotoStore uploads an object and returns its public URL.
type PhotoStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// DoctorInput carries the editable doctor fields. Updates replace the schedule
// as a whole.
type DoctorInput struct {
	Name          string
	Specialty     string
	WorkStart     string
	WorkEnd       string
	AvailableDays []entity.Weekday
}

func (in DoctorInput) apply(d *entity.Doctor) {
	d.Name = strings.TrimSpace(in.Name)
	d.Specialty = strings.TrimSpace(in.Specialty)
	d.WorkStart = strings.TrimSpace(in.WorkStart)
	d.WorkEnd = strings.TrimSpace(in.WorkEnd)
	d.AvailableDays = slices.Clone(in.AvailableDays)
}

type DoctorService struct {
	Repo   repo.DoctorRepository
	IDs    repo.IDAllocator
	Locker repo.Locker
	Logger *logrus.Logger
	Photos PhotoStore // optional
}

func NewDoctorService(r repo.DoctorRepository, ids repo.IDAllocator, locker repo.Locker, logger *logrus.Logger) *DoctorService {
	return &DoctorService{Repo: r, IDs: ids, Locker: locker, Logger: orNop(logger)}
}

func (s *DoctorService) Register(ctx context.Context, in DoctorInput) (*entity.Doctor, error) {
	var d entity.Doctor
	in.apply(&d)
	if problems := d.Validate(); problems != nil {
		return nil, invalidInput(problems)
	}

	unlock, err := lockCollection(ctx, s.Locker, lockDoctors)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doctors, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	d.ID = s.IDs.NextID(PrefixDoctor, collectIDs(doctors, doctorID))
	if err := s.Repo.SaveAll(ctx, append(doctors, d)); err != nil {
		return nil, s.storageFailure("save doctor", err)
	}
	s.Logger.WithField("doctor_id", d.ID).Info("doctor registered")
	return &d, nil
}

// Update replaces the doctor's profile and schedule. Existing appointments are
// not re-validated against the new schedule.
func (s *DoctorService) Update(ctx context.Context, id string, in DoctorInput) (*entity.Doctor, error) {
	unlock, err := lockCollection(ctx, s.Locker, lockDoctors)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doctors, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	i := slices.IndexFunc(doctors, func(d entity.Doctor) bool { return d.ID == id })
	if i < 0 {
		return nil, newError(KindDoctorNotFound, "doctor %s does not exist", id)
	}
	d := doctors[i].Clone()
	in.apply(&d)
	if problems := d.Validate(); problems != nil {
		return nil, invalidInput(problems)
	}
	doctors[i] = d
	if err := s.Repo.SaveAll(ctx, doctors); err != nil {
		return nil, s.storageFailure("save doctor", err)
	}
	s.Logger.WithField("doctor_id", id).Info("doctor updated")
	return &d, nil
}

func (s *DoctorService) Get(ctx context.Context, id string) (*entity.Doctor, error) {
	doctors, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	for _, d := range doctors {
		if d.ID == id {
			out := d.Clone()
			return &out, nil
		}
	}
	return nil, newError(KindDoctorNotFound, "doctor %s does not exist", id)
}

// List returns every doctor, or only those whose specialty equals specialty
// (case-insensitive) when it is non-empty.
func (s *DoctorService) List(ctx context.Context, specialty string) ([]entity.Doctor, error) {
	doctors, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	specialty = strings.TrimSpace(specialty)
	if specialty == "" {
		return doctors, nil
	}
	out := make([]entity.Doctor, 0)
	for _, d := range doctors {
		if strings.EqualFold(d.Specialty, specialty) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Specialties returns the distinct specialties in alphabetical order.
func (s *DoctorService) Specialties(ctx context.Context) ([]string, error) {
	doctors, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	out := make([]string, 0)
	for _, d := range doctors {
		if !slices.Contains(out, d.Specialty) {
			out = append(out, d.Specialty)
		}
	}
	slices.Sort(out)
	return out, nil
}

// UploadPhoto stores the doctor's picture and records its URL.
func (s *DoctorService) UploadPhoto(ctx context.Context, id, filename, contentType string, r io.Reader) (*entity.Doctor, error) {
	if s.Photos == nil {
		return nil, newError(KindStorage, "photo storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalidInput(map[string]string{"photo": "must be an image"})
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	object := fmt.Sprintf("doctors/%s/photo%s", id, strings.ToLower(path.Ext(filename)))
	url, err := s.Photos.Upload(ctx, object, contentType, r)
	if err != nil {
		return nil, s.storageFailure("upload photo", err)
	}

	unlock, err := lockCollection(ctx, s.Locker, lockDoctors)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doctors, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	i := slices.IndexFunc(doctors, func(d entity.Doctor) bool { return d.ID == id })
	if i < 0 {
		return nil, newError(KindDoctorNotFound, "doctor %s does not exist", id)
	}
	doctors[i].PhotoURL = url
	if err := s.Repo.SaveAll(ctx, doctors); err != nil {
		return nil, s.storageFailure("save doctor", err)
	}
	out := doctors[i].Clone()
	s.Logger.WithFields(logrus.Fields{"doctor_id": id, "url": url}).Info("doctor photo uploaded")
	return &out, nil
}

func (s *DoctorService) storageFailure(op string, err error) error {
	s.Logger.WithError(err).WithField("op", op).Error("storage failure")
	return storageError(op, err)
}

func doctorID(d entity.Doctor) string { return d.ID }
