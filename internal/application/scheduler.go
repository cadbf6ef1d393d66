package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	repo "github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/scheduling"
)

const (
	DefaultHorizonMonths   = 3
	DefaultMaxReasonLength = 200
)

// ScheduleRequest is the input of Scheduler.Schedule. Date is YYYY-MM-DD and
// Time is HH:MM, both in the clinic's local time.
type ScheduleRequest struct {
	PatientID string
	DoctorID  string
	Date      string
	Time      string
	Reason    string
}

func (r ScheduleRequest) trimmed() ScheduleRequest {
	return ScheduleRequest{
		PatientID: strings.TrimSpace(r.PatientID),
		DoctorID:  strings.TrimSpace(r.DoctorID),
		Date:      strings.TrimSpace(r.Date),
		Time:      strings.TrimSpace(r.Time),
		Reason:    strings.TrimSpace(r.Reason),
	}
}

// ListFilter narrows Scheduler.List. Zero fields match everything.
type ListFilter struct {
	Status    entity.Status
	Date      string
	DoctorID  string
	PatientID string
}

func (f ListFilter) match(a entity.Appointment) bool {
	return (f.Status == "" || a.Status == f.Status) &&
		(f.Date == "" || a.Date == f.Date) &&
		(f.DoctorID == "" || a.DoctorID == f.DoctorID) &&
		(f.PatientID == "" || a.PatientID == f.PatientID)
}

// AppointmentView is an appointment joined with the names it references.
type AppointmentView struct {
	entity.Appointment
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	Specialty   string `json:"specialty"`
}

// CancelTokenVerifier resolves a signed cancellation token to an appointment id.
type CancelTokenVerifier interface {
	Parse(token string) (appointmentID string, err error)
}

// Scheduler is the single authority for admitting, transitioning and querying
// appointments. Every read-check-write sequence runs under the "appointments"
// lock.
type Scheduler struct {
	Appointments repo.AppointmentRepository
	Patients     repo.PatientRepository
	Doctors      repo.DoctorRepository
	IDs          repo.IDAllocator
	Locker       repo.Locker
	Clock        Clock
	Logger       *logrus.Logger

	// optional
	Events EventPublisher
	Tokens CancelTokenVerifier

	HorizonMonths   int
	MaxReasonLength int
}

func NewScheduler(
	appointments repo.AppointmentRepository,
	patients repo.PatientRepository,
	doctors repo.DoctorRepository,
	ids repo.IDAllocator,
	locker repo.Locker,
	clock Clock,
	logger *logrus.Logger,
) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		Appointments:    appointments,
		Patients:        patients,
		Doctors:         doctors,
		IDs:             ids,
		Locker:          locker,
		Clock:           clock,
		Logger:          orNop(logger),
		HorizonMonths:   DefaultHorizonMonths,
		MaxReasonLength: DefaultMaxReasonLength,
	}
}

// Schedule admits a new appointment. Checks run in a fixed order and the first
// failure is returned.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (*entity.Appointment, error) {
	a, err := s.schedule(ctx, req.trimmed())
	if err != nil {
		countRejection(err)
		s.Logger.WithFields(logrus.Fields{
			"patient_id": req.PatientID,
			"doctor_id":  req.DoctorID,
			"date":       req.Date,
			"time":       req.Time,
			"kind":       KindOf(err),
		}).Info("appointment rejected")
		return nil, err
	}
	appointmentMetrics.Add("scheduled", 1)
	s.Logger.WithFields(logrus.Fields{
		"appointment_id": a.ID,
		"doctor_id":      a.DoctorID,
		"date":           a.Date,
		"time":           a.Time,
	}).Info("appointment scheduled")
	// published after the lock is released
	s.publish(ctx, EventScheduled, *a)
	return a, nil
}

func (s *Scheduler) schedule(ctx context.Context, req ScheduleRequest) (*entity.Appointment, error) {
	if req.PatientID == "" || req.DoctorID == "" || req.Date == "" || req.Time == "" || req.Reason == "" {
		return nil, newError(KindMissingFields, "patient, doctor, date, time and reason are required")
	}
	if n := utf8.RuneCountInString(req.Reason); n > s.maxReason() {
		return nil, newError(KindMissingFields, "reason must be at most %d characters (got %d)", s.maxReason(), n)
	}

	now := s.Clock.Now()
	today := midnight(now)
	date, err := time.ParseInLocation(entity.DateLayout, req.Date, now.Location())
	if err != nil {
		return nil, newError(KindInvalidDate, "date %q is not a valid YYYY-MM-DD calendar date", req.Date)
	}
	if !entity.IsValidClock(req.Time) {
		return nil, newError(KindInvalidDate, "time %q is not a valid HH:MM time", req.Time)
	}
	if date.Before(today) {
		return nil, newError(KindPastDate, "cannot book on %s: the date is in the past", req.Date)
	}
	limit := today.AddDate(0, s.horizon(), 0)
	if date.After(limit) {
		return nil, newError(KindTooFarAhead, "cannot book more than %d months ahead (latest date is %s)",
			s.horizon(), limit.Format(entity.DateLayout))
	}

	unlock, err := lockCollection(ctx, s.Locker, lockAppointments)
	if err != nil {
		return nil, err
	}
	defer unlock()

	patients, err := s.Patients.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	if !slices.ContainsFunc(patients, func(p entity.Patient) bool { return p.ID == req.PatientID }) {
		return nil, newError(KindPatientNotFound, "patient %s does not exist", req.PatientID)
	}
	doctor, err := s.findDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	switch av := scheduling.IsWithinSchedule(doctor, date, req.Time); av.Reason {
	case scheduling.DayNotAvailable:
		return nil, newError(KindDayNotAvailable, "%s does not work on %s. Available days: %s",
			doctor.Name, scheduling.WeekdayOf(date), doctor.DaysText())
	case scheduling.OutOfHours:
		return nil, newError(KindOutOfHours, "%s is outside %s's working hours. Available hours: %s to %s",
			req.Time, doctor.Name, doctor.WorkStart, doctor.WorkEnd)
	}

	if date.Equal(today) && req.Time <= now.Format(entity.ClockLayout) {
		return nil, newError(KindPastTime, "%s today has already passed", req.Time)
	}

	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load appointments", err)
	}
	if scheduling.HasConflict(appointments, req.DoctorID, req.Date, req.Time) {
		return nil, newError(KindSlotTaken, "%s already has an appointment on %s at %s",
			doctor.Name, req.Date, req.Time)
	}

	a := entity.Appointment{
		ID:        s.IDs.NextID(PrefixAppointment, collectIDs(appointments, appointmentID)),
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    entity.StatusScheduled,
		CreatedAt: storedTime(now),
	}
	if err := s.Appointments.SaveAll(ctx, append(appointments, a)); err != nil {
		// another process won the slot between our check and the write
		if errors.Is(err, repo.ErrConflict) {
			return nil, &Error{Kind: KindSlotTaken, Err: err,
				Message: fmt.Sprintf("%s already has an appointment on %s at %s", doctor.Name, req.Date, req.Time)}
		}
		return nil, s.storageFailure("save appointment", err)
	}
	return &a, nil
}

// Cancel moves a scheduled appointment to cancelled.
func (s *Scheduler) Cancel(ctx context.Context, id string) (*entity.Appointment, error) {
	return s.changeStatus(ctx, id, entity.StatusCancelled, EventCancelled)
}

// Complete moves a scheduled appointment to completed.
func (s *Scheduler) Complete(ctx context.Context, id string) (*entity.Appointment, error) {
	return s.changeStatus(ctx, id, entity.StatusCompleted, EventCompleted)
}

// CancelByToken cancels the appointment named by a signed cancellation token.
func (s *Scheduler) CancelByToken(ctx context.Context, token string) (*entity.Appointment, error) {
	if s.Tokens == nil {
		return nil, newError(KindInvalidInput, "cancellation links are not enabled")
	}
	id, err := s.Tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		s.Logger.WithError(err).Info("cancel token rejected")
		return nil, &Error{Kind: KindInvalidInput, Message: "the cancellation link is invalid or has expired", Err: err}
	}
	return s.Cancel(ctx, id)
}

func (s *Scheduler) changeStatus(ctx context.Context, id string, next entity.Status, typ EventType) (*entity.Appointment, error) {
	a, err := s.transition(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, typ, *a)
	return a, nil
}

func (s *Scheduler) transition(ctx context.Context, id string, next entity.Status) (*entity.Appointment, error) {
	unlock, err := lockCollection(ctx, s.Locker, lockAppointments)
	if err != nil {
		return nil, err
	}
	defer unlock()

	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load appointments", err)
	}
	i := slices.IndexFunc(appointments, func(a entity.Appointment) bool { return a.ID == id })
	if i < 0 {
		return nil, newError(KindNotFound, "appointment %s does not exist", id)
	}
	a := &appointments[i]
	if !a.Status.CanTransitionTo(next) {
		return nil, newError(KindInvalidTransition, "appointment %s is already %s", id, a.Status)
	}

	now := storedTime(s.Clock.Now())
	a.Status = next
	switch next {
	case entity.StatusCancelled:
		a.CancelledAt = &now
	case entity.StatusCompleted:
		a.CompletedAt = &now
	}
	if err := s.Appointments.SaveAll(ctx, appointments); err != nil {
		return nil, s.storageFailure("save appointment", err)
	}

	out := a.Clone()
	appointmentMetrics.Add(string(next), 1)
	s.Logger.WithFields(logrus.Fields{"appointment_id": id, "status": next}).Info("appointment updated")
	return &out, nil
}

// AgendaFor returns a doctor's appointments inside r ordered by (date, time).
func (s *Scheduler) AgendaFor(ctx context.Context, doctorID string, r scheduling.Range) ([]entity.Appointment, error) {
	if _, err := s.findDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load appointments", err)
	}
	return scheduling.Agenda(appointments, doctorID, r, s.Clock.Now()), nil
}

// Get returns a single appointment by id.
func (s *Scheduler) Get(ctx context.Context, id string) (*entity.Appointment, error) {
	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load appointments", err)
	}
	for _, a := range appointments {
		if a.ID == id {
			out := a.Clone()
			return &out, nil
		}
	}
	return nil, newError(KindNotFound, "appointment %s does not exist", id)
}

// List returns the appointments matching f, ordered by (date, time) and joined
// with patient and doctor names.
func (s *Scheduler) List(ctx context.Context, f ListFilter) ([]AppointmentView, error) {
	appointments, err := s.Appointments.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load appointments", err)
	}
	matched := make([]entity.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if f.match(a) {
			matched = append(matched, a)
		}
	}
	scheduling.SortByDateTime(matched)
	return s.views(ctx, matched)
}

// PatientHistory lists every appointment of a patient, oldest first.
func (s *Scheduler) PatientHistory(ctx context.Context, patientID string) ([]AppointmentView, error) {
	patients, err := s.Patients.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	if !slices.ContainsFunc(patients, func(p entity.Patient) bool { return p.ID == patientID }) {
		return nil, newError(KindPatientNotFound, "patient %s does not exist", patientID)
	}
	return s.List(ctx, ListFilter{PatientID: patientID})
}

func (s *Scheduler) views(ctx context.Context, appointments []entity.Appointment) ([]AppointmentView, error) {
	patients, err := s.Patients.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load patients", err)
	}
	doctors, err := s.Doctors.LoadAll(ctx)
	if err != nil {
		return nil, s.storageFailure("load doctors", err)
	}
	patientNames := make(map[string]string, len(patients))
	for _, p := range patients {
		patientNames[p.ID] = p.Name
	}
	byID := make(map[string]entity.Doctor, len(doctors))
	for _, d := range doctors {
		byID[d.ID] = d
	}
	out := make([]AppointmentView, len(appointments))
	for i, a := range appointments {
		d := byID[a.DoctorID]
		out[i] = AppointmentView{
			Appointment: a.Clone(),
			PatientName: patientNames[a.PatientID],
			DoctorName:  d.Name,
			Specialty:   d.Specialty,
		}
	}
	return out, nil
}

func (s *Scheduler) findDoctor(ctx context.Context, id string) (entity.Doctor, error) {
	doctors, err := s.Doctors.LoadAll(ctx)
	if err != nil {
		return entity.Doctor{}, s.storageFailure("load doctors", err)
	}
	for _, d := range doctors {
		if d.ID == id {
			return d, nil
		}
	}
	return entity.Doctor{}, newError(KindDoctorNotFound, "doctor %s does not exist", id)
}

// publish is best effort: a broker outage never fails an admitted change.
func (s *Scheduler) publish(ctx context.Context, typ EventType, a entity.Appointment) {
	if s.Events == nil {
		return
	}
	ev := AppointmentEvent{
		Type:          typ,
		AppointmentID: a.ID,
		Status:        a.Status,
		Date:          a.Date,
		Time:          a.Time,
		Reason:        a.Reason,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		OccurredAt:    storedTime(s.Clock.Now()),
	}
	if patients, err := s.Patients.LoadAll(ctx); err == nil {
		for _, p := range patients {
			if p.ID == a.PatientID {
				ev.PatientName, ev.PatientEmail = p.Name, p.Email
				break
			}
		}
	}
	if d, err := s.findDoctor(ctx, a.DoctorID); err == nil {
		ev.DoctorName, ev.Specialty = d.Name, d.Specialty
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"appointment_id": a.ID,
			"event":          typ,
		}).Warn("publish appointment event failed")
	}
}

func (s *Scheduler) storageFailure(op string, err error) error {
	s.Logger.WithError(err).WithField("op", op).Error("storage failure")
	return storageError(op, err)
}

func (s *Scheduler) horizon() int {
	if s.HorizonMonths <= 0 {
		return DefaultHorizonMonths
	}
	return s.HorizonMonths
}

func (s *Scheduler) maxReason() int {
	if s.MaxReasonLength <= 0 {
		return DefaultMaxReasonLength
	}
	return s.MaxReasonLength
}

func appointmentID(a entity.Appointment) string { return a.ID }
