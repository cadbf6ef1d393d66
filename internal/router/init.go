package router

import (
	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/container"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-clinic-scheduler/internal/interface/http"
	"github.com/oksasatya/go-clinic-scheduler/internal/router/modules"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
)

// Services is the application layer built from the container.
type Services struct {
	Scheduler *application.Scheduler
	Patients  *application.PatientService
	Doctors   *application.DoctorService
	Stats     *application.StatsService
}

// BuildServices wires the application services onto the container singletons.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	clock := container.GetClock()

	scheduler := application.NewScheduler(
		container.GetAppointments(),
		container.GetPatients(),
		container.GetDoctors(),
		container.GetIDAllocator(),
		container.GetLocker(),
		clock,
		logger,
	)
	scheduler.HorizonMonths = cfg.BookingHorizonMonths
	scheduler.MaxReasonLength = cfg.ReasonMaxLength
	if pub := container.GetRabbitPub(); pub != nil {
		scheduler.Events = pub
	}
	if tokens := container.GetCancelTokens(); tokens != nil {
		scheduler.Tokens = tokens
	}

	patients := application.NewPatientService(container.GetPatients(), container.GetIDAllocator(), container.GetLocker(), clock, logger)
	if es := container.GetES(); es != nil {
		patients.Index = search.NewPatientIndex(es, cfg.ESPatientsIndex)
	}

	doctors := application.NewDoctorService(container.GetDoctors(), container.GetIDAllocator(), container.GetLocker(), logger)
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		doctors.Photos = &helpers.GCSUploader{Client: gcs, Bucket: cfg.GCSBucket}
	}

	stats := application.NewStatsService(container.GetPatients(), container.GetDoctors(), container.GetAppointments(), clock)

	return Services{Scheduler: scheduler, Patients: patients, Doctors: doctors, Stats: stats}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	svc := BuildServices()
	logger := container.GetLogger()
	rdb := container.GetRedis()

	r.Add(modules.NewPatientModule(handlers.NewPatientHandler(svc.Patients, svc.Scheduler, logger), rdb))
	r.Add(modules.NewDoctorModule(handlers.NewDoctorHandler(svc.Doctors, svc.Scheduler, logger), rdb))
	r.Add(modules.NewAppointmentModule(handlers.NewAppointmentHandler(svc.Scheduler, logger), rdb))
	r.Add(modules.NewStatsModule(handlers.NewStatsHandler(svc.Stats, logger), rdb))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
