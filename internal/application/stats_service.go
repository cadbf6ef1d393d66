package application

import (
	"cmp"
	"context"
	"slices"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	repo "github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
)

// Summary backs the dashboard counters.
type Summary struct {
	PendingAppointments int `json:"pending_appointments"`
	Patients            int `json:"patients"`
	Doctors             int `json:"doctors"`
	TodayAppointments   int `json:"today_appointments"`
	Next24Hours         int `json:"next_24_hours"`
}

type DoctorStat struct {
	DoctorID     string `json:"doctor_id"`
	DoctorName   string `json:"doctor_name"`
	Specialty    string `json:"specialty"`
	Appointments int    `json:"appointments"`
}

type SpecialtyStat struct {
	Specialty    string `json:"specialty"`
	Appointments int    `json:"appointments"`
}

type StatsService struct {
	Patients     repo.PatientRepository
	Doctors      repo.DoctorRepository
	Appointments repo.AppointmentRepository
	Clock        Clock
}

func NewStatsService(patients repo.PatientRepository, doctors repo.DoctorRepository, appointments repo.AppointmentRepository, clock Clock) *StatsService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &StatsService{Patients: patients, Doctors: doctors, Appointments: appointments, Clock: clock}
}

func (s *StatsService) Summary(ctx context.Context) (Summary, error) {
	patients, err := s.Patients.LoadAll(ctx)
	if err != nil {
		return Summary{}, storageError("load patients", err)
	}
	doctors, err := s.Doctors.LoadAll(ctx)
	if err != nil {
		return Summary{}, storageError("load doctors", err)
	}
	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return Summary{}, storageError("load appointments", err)
	}

	now := s.Clock.Now()
	today := now.Format(entity.DateLayout)
	tomorrow := midnight(now).AddDate(0, 0, 1).Format(entity.DateLayout)
	clock := now.Format(entity.ClockLayout)

	sum := Summary{Patients: len(patients), Doctors: len(doctors)}
	for _, a := range appointments {
		if a.Date == today {
			sum.TodayAppointments++
		}
		if !a.IsActive() {
			continue
		}
		sum.PendingAppointments++
		if (a.Date == today && a.Time > clock) || a.Date == tomorrow {
			sum.Next24Hours++
		}
	}
	return sum, nil
}

// DoctorRanking counts scheduled appointments per doctor, busiest first.
// Doctors without appointments are included with zero.
func (s *StatsService) DoctorRanking(ctx context.Context) ([]DoctorStat, error) {
	doctors, err := s.Doctors.LoadAll(ctx)
	if err != nil {
		return nil, storageError("load doctors", err)
	}
	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, storageError("load appointments", err)
	}
	counts := make(map[string]int)
	for _, a := range appointments {
		if a.IsActive() {
			counts[a.DoctorID]++
		}
	}
	out := make([]DoctorStat, len(doctors))
	for i, d := range doctors {
		out[i] = DoctorStat{DoctorID: d.ID, DoctorName: d.Name, Specialty: d.Specialty, Appointments: counts[d.ID]}
	}
	slices.SortStableFunc(out, func(a, b DoctorStat) int {
		if c := cmp.Compare(b.Appointments, a.Appointments); c != 0 {
			return c
		}
		return cmp.Compare(a.DoctorID, b.DoctorID)
	})
	return out, nil
}

// BusiestDoctor returns the doctor with the most scheduled appointments, or
// nil when no doctor has any.
func (s *StatsService) BusiestDoctor(ctx context.Context) (*DoctorStat, error) {
	ranking, err := s.DoctorRanking(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranking) == 0 || ranking[0].Appointments == 0 {
		return nil, nil
	}
	return &ranking[0], nil
}

// SpecialtyRanking counts appointments of any status per specialty.
func (s *StatsService) SpecialtyRanking(ctx context.Context) ([]SpecialtyStat, error) {
	doctors, err := s.Doctors.LoadAll(ctx)
	if err != nil {
		return nil, storageError("load doctors", err)
	}
	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, storageError("load appointments", err)
	}
	specialtyOf := make(map[string]string, len(doctors))
	counts := make(map[string]int)
	for _, d := range doctors {
		specialtyOf[d.ID] = d.Specialty
		counts[d.Specialty] += 0
	}
	for _, a := range appointments {
		if sp, ok := specialtyOf[a.DoctorID]; ok {
			counts[sp]++
		}
	}
	out := make([]SpecialtyStat, 0, len(counts))
	for sp, n := range counts {
		out = append(out, SpecialtyStat{Specialty: sp, Appointments: n})
	}
	slices.SortFunc(out, func(a, b SpecialtyStat) int {
		if c := cmp.Compare(b.Appointments, a.Appointments); c != 0 {
			return c
		}
		return cmp.Compare(a.Specialty, b.Specialty)
	})
	return out, nil
}

// TopSpecialty returns the specialty with the most appointments, or nil when
// there are none.
func (s *StatsService) TopSpecialty(ctx context.Context) (*SpecialtyStat, error) {
	ranking, err := s.SpecialtyRanking(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranking) == 0 || ranking[0].Appointments == 0 {
		return nil, nil
	}
	return &ranking[0], nil
}
