package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-clinic-scheduler/config"
	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/idgen"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/jsonfile"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/postgres"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/search"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
)

// seed registers demo doctors and patients through the services, so every
// record passes the same validation as API input, then books a few
// appointments on the next working days.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var (
		patients     repository.PatientRepository
		doctors      repository.DoctorRepository
		appointments repository.AppointmentRepository
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		patients = pginfra.NewPatientRepository(pool)
		doctors = pginfra.NewDoctorRepository(pool)
		appointments = pginfra.NewAppointmentRepository(pool)
	case config.StorageJSONFile:
		stores := jsonfile.Open(cfg.DataDir)
		patients, doctors, appointments = stores.Patients, stores.Doctors, stores.Appointments
	default:
		log.Fatalf("seed needs persistent storage, STORAGE_DRIVER=%q", cfg.StorageDriver)
	}

	clock := application.SystemClock{Location: cfg.Location()}
	locker := memory.NewKeyedLocker()
	ids := idgen.Sequential{}

	doctorSvc := application.NewDoctorService(doctors, ids, locker, logger)
	patientSvc := application.NewPatientService(patients, ids, locker, clock, logger)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to create elasticsearch client: %v", err)
		}
		if err := helpers.EnsureIndex(ctx, es, cfg.ESPatientsIndex, search.Mapping); err != nil {
			log.Fatalf("failed to ensure patient index: %v", err)
		}
		patientSvc.Index = search.NewPatientIndex(es, cfg.ESPatientsIndex)
	}
	scheduler := application.NewScheduler(appointments, patients, doctors, ids, locker, clock, logger)

	weekdays := []entity.Weekday{entity.Monday, entity.Tuesday, entity.Wednesday, entity.Thursday, entity.Friday}
	demoDoctors := []application.DoctorInput{
		{Name: "Dr. Ana García", Specialty: "Cardiology", WorkStart: "09:00", WorkEnd: "13:00", AvailableDays: weekdays},
		{Name: "Dr. Luis Fernández", Specialty: "Pediatrics", WorkStart: "14:00", WorkEnd: "18:00", AvailableDays: weekdays[:3]},
		{Name: "Dr. Marta Ruiz", Specialty: "Dermatology", WorkStart: "08:00", WorkEnd: "12:00", AvailableDays: []entity.Weekday{entity.Thursday, entity.Friday, entity.Saturday}},
	}
	demoPatients := []application.PatientInput{
		{Name: "Carlos López", Age: 34, Phone: "555-123-4567", Email: "carlos.lopez@example.com"},
		{Name: "María Torres", Age: 58, Phone: "555-987-6543", Email: "maria.torres@example.com"},
		{Name: "Sofía Herrera", Age: 9, Phone: "555-222-3344", Email: "sofia.herrera@example.com"},
	}

	var seededDoctors []entity.Doctor
	for _, in := range demoDoctors {
		d, err := doctorSvc.Register(ctx, in)
		if err != nil {
			log.Fatalf("failed to seed doctor %s: %v", in.Name, err)
		}
		seededDoctors = append(seededDoctors, *d)
		fmt.Printf("seeded doctor: id=%s name=%s specialty=%s\n", d.ID, d.Name, d.Specialty)
	}

	var seededPatients []entity.Patient
	for _, in := range demoPatients {
		p, err := patientSvc.Register(ctx, in)
		if errors.Is(err, application.ErrEmailTaken) {
			fmt.Printf("patient %s already present, skipping\n", in.Email)
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed patient %s: %v", in.Email, err)
		}
		seededPatients = append(seededPatients, *p)
		fmt.Printf("seeded patient: id=%s name=%s\n", p.ID, p.Name)
	}

	// one appointment per patient, each on the doctor's next working day
	for i, p := range seededPatients {
		d := seededDoctors[i%len(seededDoctors)]
		date := nextWorkingDay(clock.Now(), d)
		a, err := scheduler.Schedule(ctx, application.ScheduleRequest{
			PatientID: p.ID,
			DoctorID:  d.ID,
			Date:      date.Format(entity.DateLayout),
			Time:      d.WorkStart,
			Reason:    "Routine check-up",
		})
		if err != nil {
			fmt.Printf("skipped appointment for %s: %v\n", p.ID, err)
			continue
		}
		fmt.Printf("seeded appointment: id=%s patient=%s doctor=%s %s %s\n", a.ID, a.PatientID, a.DoctorID, a.Date, a.Time)
	}

	// rebuild the search index so patients seeded on earlier runs are found too
	if n, err := patientSvc.Reindex(ctx); err != nil {
		fmt.Printf("reindex stopped after %d patients: %v\n", n, err)
	} else if patientSvc.Index != nil {
		fmt.Printf("indexed %d patients\n", n)
	}
}

func nextWorkingDay(now time.Time, d entity.Doctor) time.Time {
	day := now.AddDate(0, 0, 1)
	for i := 0; i < 7; i++ {
		if d.WorksOn(entity.WeekdayFrom(day.Weekday())) {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}
