package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/scheduling"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/idgen"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/memory"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
)

func req(doctor, date, clock string) application.ScheduleRequest {
	return application.ScheduleRequest{PatientID: "P001", DoctorID: doctor, Date: date, Time: clock, Reason: "checkup"}
}

func TestScheduleRejectsDayOutsideSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-17", "10:00"))

	require.ErrorIs(t, err, application.ErrDayNotAvailable)
	assert.Contains(t, err.Error(), "Monday")
	assert.Empty(t, f.stored(t))
}

func TestScheduleRejectsTimeOutsideHours(t *testing.T) {
	f := newFixture(t)

	_, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "13:00"))

	require.ErrorIs(t, err, application.ErrOutOfHours)
	assert.Contains(t, err.Error(), "09:00 to 12:00")
	assert.Empty(t, f.stored(t))
}

func TestScheduleAcceptsEndOfWorkingWindow(t *testing.T) {
	f := newFixture(t)

	a, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "12:00"))

	require.NoError(t, err)
	assert.Equal(t, "12:00", a.Time)
}

func TestScheduleSlotTakenAndFreedByCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "C001", first.ID)
	assert.Equal(t, entity.StatusScheduled, first.Status)
	assert.Equal(t, wednesday, first.CreatedAt)

	second := req("D001", "2025-06-16", "10:00")
	second.PatientID = "P002"
	_, err = f.sched.Schedule(ctx, second)
	require.ErrorIs(t, err, application.ErrSlotTaken)

	_, err = f.sched.Cancel(ctx, first.ID)
	require.NoError(t, err)

	again, err := f.sched.Schedule(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "C002", again.ID)
	assert.Len(t, f.stored(t), 2)
}

func TestScheduleBookingHorizon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sched.Schedule(ctx, req("D001", "2025-10-13", "10:00"))
	require.ErrorIs(t, err, application.ErrTooFarAhead)
	assert.Contains(t, err.Error(), "2025-09-11")

	_, err = f.sched.Schedule(ctx, req("D002", "2025-09-11", "10:00"))
	require.NoError(t, err, "the last day of the horizon is bookable")

	_, err = f.sched.Schedule(ctx, req("D002", "2025-09-12", "10:00"))
	require.ErrorIs(t, err, application.ErrTooFarAhead)

	f.sched.HorizonMonths = 6
	_, err = f.sched.Schedule(ctx, req("D001", "2025-10-13", "10:00"))
	require.NoError(t, err)
}

func TestScheduleRejectsPastDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.sched.Schedule(context.Background(), req("D002", "2025-06-10", "10:00"))

	require.ErrorIs(t, err, application.ErrPastDate)
}

func TestScheduleRejectsPastTimeToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, clock := range []string{"09:00", "10:30"} {
		_, err := f.sched.Schedule(ctx, req("D002", "2025-06-11", clock))
		require.ErrorIs(t, err, application.ErrPastTime, clock)
	}

	a, err := f.sched.Schedule(ctx, req("D002", "2025-06-11", "10:31"))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-11", a.Date)
}

func TestScheduleMissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, r := range map[string]application.ScheduleRequest{
		"patient": {DoctorID: "D001", Date: "2025-06-16", Time: "10:00", Reason: "x"},
		"doctor":  {PatientID: "P001", Date: "2025-06-16", Time: "10:00", Reason: "x"},
		"date":    {PatientID: "P001", DoctorID: "D001", Time: "10:00", Reason: "x"},
		"time":    {PatientID: "P001", DoctorID: "D001", Date: "2025-06-16", Reason: "x"},
		"reason":  {PatientID: "P001", DoctorID: "D001", Date: "2025-06-16", Time: "10:00", Reason: "   "},
	} {
		_, err := f.sched.Schedule(ctx, r)
		assert.ErrorIs(t, err, application.ErrMissingFields, name)
	}

	long := req("D001", "2025-06-16", "10:00")
	long.Reason = strings.Repeat("á", application.DefaultMaxReasonLength+1)
	_, err := f.sched.Schedule(ctx, long)
	assert.ErrorIs(t, err, application.ErrMissingFields)

	long.Reason = strings.Repeat("á", application.DefaultMaxReasonLength)
	_, err = f.sched.Schedule(ctx, long)
	assert.NoError(t, err)
}

func TestScheduleInvalidDateOrTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, r := range []application.ScheduleRequest{
		req("D001", "2025-02-30", "10:00"),
		req("D001", "16/06/2025", "10:00"),
		req("D001", "2025-06-16", "25:00"),
		req("D001", "2025-06-16", "10h"),
	} {
		_, err := f.sched.Schedule(ctx, r)
		assert.ErrorIs(t, err, application.ErrInvalidDate, r.Date+" "+r.Time)
	}
}

func TestScheduleCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// missing reason wins over an invalid date
	_, err := f.sched.Schedule(ctx, application.ScheduleRequest{PatientID: "P001", DoctorID: "D001", Date: "nope", Time: "10:00"})
	assert.ErrorIs(t, err, application.ErrMissingFields)

	// past date wins over unknown patient
	r := req("D001", "2025-06-10", "10:00")
	r.PatientID = "P999"
	_, err = f.sched.Schedule(ctx, r)
	assert.ErrorIs(t, err, application.ErrPastDate)

	// unknown patient wins over unknown doctor
	r = req("D999", "2025-06-16", "10:00")
	r.PatientID = "P999"
	_, err = f.sched.Schedule(ctx, r)
	assert.ErrorIs(t, err, application.ErrPatientNotFound)

	_, err = f.sched.Schedule(ctx, req("D999", "2025-06-16", "10:00"))
	assert.ErrorIs(t, err, application.ErrDoctorNotFound)

	// day check wins over hours check
	_, err = f.sched.Schedule(ctx, req("D001", "2025-06-17", "20:00"))
	assert.ErrorIs(t, err, application.ErrDayNotAvailable)
}

func TestScheduleRejectionLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)
	before := f.stored(t)

	for i := 0; i < 3; i++ {
		_, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
		require.ErrorIs(t, err, application.ErrSlotTaken)
	}

	assert.Equal(t, before, f.stored(t))
	assert.Equal(t, []application.EventType{application.EventScheduled}, f.events.types())
}

func TestScheduleConcurrentRequestsForOneSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.sched.Schedule(ctx, req("D002", "2025-06-12", "15:00"))
		}(i)
	}
	wg.Wait()

	ok, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, application.ErrSlotTaken):
			taken++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, taken)
	assert.Len(t, f.stored(t), 1)
}

func TestScheduleStorageFailure(t *testing.T) {
	f := newFixture(t)
	store := &failingStore[entity.Appointment]{inner: f.appointments, failSave: true}
	f.sched.Appointments = store

	_, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "10:00"))

	require.ErrorIs(t, err, application.ErrStorage)
	require.ErrorIs(t, err, errDiskFull)
	var appErr *application.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.Retryable())
	assert.Empty(t, f.stored(t))
	assert.Empty(t, f.events.types())

	store.failSave = false
	_, err = f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "10:00"))
	assert.NoError(t, err, "same request succeeds once storage recovers")
}

func TestScheduleThenGetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.sched.Schedule(ctx, application.ScheduleRequest{
		PatientID: " P001 ", DoctorID: "D001", Date: "2025-06-16", Time: "10:00", Reason: "  chest pain ",
	})
	require.NoError(t, err)

	got, err := f.sched.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, *got)
	assert.Equal(t, "P001", got.PatientID)
	assert.Equal(t, "chest pain", got.Reason)

	_, err = f.sched.Get(ctx, "C999")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestTimestampsMatchMicrosecondStore(t *testing.T) {
	f := newFixture(t)
	f.clock.t = wednesday.Add(123456789 * time.Nanosecond)
	f.sched.Appointments = &microsecondStore{inner: f.appointments}
	ctx := context.Background()

	a, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, 123456000, a.CreatedAt.Nanosecond())

	got, err := f.sched.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, *got)

	cancelled, err := f.sched.Cancel(ctx, a.ID)
	require.NoError(t, err)
	got, err = f.sched.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *cancelled.CancelledAt, *got.CancelledAt)
	assert.Equal(t, cancelled.CreatedAt, got.CreatedAt)
}

func TestSystemClockStampsRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.sched.Clock = application.SystemClock{Location: time.UTC}
	f.sched.Appointments = &microsecondStore{inner: f.appointments}
	ctx := context.Background()
	date := time.Now().UTC().AddDate(0, 0, 1).Format(entity.DateLayout)

	a, err := f.sched.Schedule(ctx, req("D002", date, "09:00"))
	require.NoError(t, err)

	got, err := f.sched.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, *got)
	assert.NotContains(t, a.CreatedAt.String(), "m=", "no monotonic reading is kept")
}

func TestEventsArePublishedOutsideTheLock(t *testing.T) {
	f := newFixture(t)
	pub := &lockCheckingPublisher{locker: f.locker}
	f.sched.Events = pub
	ctx := context.Background()

	a, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)
	_, err = f.sched.Cancel(ctx, a.ID)
	require.NoError(t, err)
	b, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "11:00"))
	require.NoError(t, err)
	_, err = f.sched.Complete(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, pub.seen)
	assert.Zero(t, pub.blocked)
}

func TestScheduleStoreConflictIsSlotTaken(t *testing.T) {
	f := newFixture(t)
	f.sched.Appointments = &failingStore[entity.Appointment]{
		inner:   f.appointments,
		saveErr: fmt.Errorf("write appointments: %w: appointments_active_slot_key", repository.ErrConflict),
	}

	_, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "10:00"))

	require.ErrorIs(t, err, application.ErrSlotTaken)
	assert.NotErrorIs(t, err, application.ErrStorage)
	var appErr *application.Error
	require.ErrorAs(t, err, &appErr)
	assert.False(t, appErr.Retryable())
	assert.Contains(t, appErr.Message, "2025-06-16 at 10:00")
	assert.Empty(t, f.events.types())
}

func TestTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)
	b, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "11:00"))
	require.NoError(t, err)

	f.clock.t = wednesday.Add(time.Hour)
	cancelled, err := f.sched.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, f.clock.t, *cancelled.CancelledAt)

	_, err = f.sched.Cancel(ctx, a.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
	_, err = f.sched.Complete(ctx, a.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	completed, err := f.sched.Complete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = f.sched.Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	_, err = f.sched.Cancel(ctx, "C404")
	assert.ErrorIs(t, err, application.ErrNotFound)

	assert.Equal(t, []application.EventType{
		application.EventScheduled, application.EventScheduled,
		application.EventCancelled, application.EventCompleted,
	}, f.events.types())
}

func TestPublishedEventCarriesDetails(t *testing.T) {
	f := newFixture(t)
	_, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, application.EventScheduled, ev.Type)
	assert.Equal(t, "C001", ev.AppointmentID)
	assert.Equal(t, "ana@example.com", ev.PatientEmail)
	assert.Equal(t, "Ana Pérez", ev.PatientName)
	assert.Equal(t, "Dr. Lucía Gómez", ev.DoctorName)
	assert.Equal(t, "Cardiology", ev.Specialty)
	assert.Equal(t, wednesday, ev.OccurredAt)
}

func TestPublishFailureDoesNotFailSchedule(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	a, err := f.sched.Schedule(context.Background(), req("D001", "2025-06-16", "10:00"))

	require.NoError(t, err)
	assert.Equal(t, "C001", a.ID)
	assert.Len(t, f.stored(t), 1)
}

func TestCancelByToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sched.CancelByToken(ctx, "anything")
	require.ErrorIs(t, err, application.ErrInvalidInput)

	tokens := helpers.NewCancelTokenManager("test-secret", time.Hour)
	f.sched.Tokens = tokens
	a, err := f.sched.Schedule(ctx, req("D001", "2025-06-16", "10:00"))
	require.NoError(t, err)

	token, _, err := tokens.Generate(a.ID)
	require.NoError(t, err)

	_, err = f.sched.CancelByToken(ctx, "not-a-token")
	require.ErrorIs(t, err, application.ErrInvalidInput)

	cancelled, err := f.sched.CancelByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)

	_, err = f.sched.CancelByToken(ctx, token)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
}

func TestAgendaForThisWeek(t *testing.T) {
	seed := []entity.Appointment{
		{ID: "C001", PatientID: "P001", DoctorID: "D002", Date: "2025-06-15", Time: "09:00", Status: entity.StatusScheduled},
		{ID: "C002", PatientID: "P002", DoctorID: "D002", Date: "2025-06-11", Time: "11:00", Status: entity.StatusScheduled},
		{ID: "C003", PatientID: "P001", DoctorID: "D002", Date: "2025-06-11", Time: "09:30", Status: entity.StatusCompleted},
		{ID: "C004", PatientID: "P002", DoctorID: "D002", Date: "2025-06-09", Time: "10:00", Status: entity.StatusCancelled},
		{ID: "C005", PatientID: "P001", DoctorID: "D002", Date: "2025-06-16", Time: "10:00", Status: entity.StatusScheduled},
		{ID: "C006", PatientID: "P001", DoctorID: "D002", Date: "2025-06-08", Time: "10:00", Status: entity.StatusScheduled},
		{ID: "C007", PatientID: "P001", DoctorID: "D001", Date: "2025-06-09", Time: "10:00", Status: entity.StatusScheduled},
	}
	f := newFixture(t, seed...)
	ctx := context.Background()

	agenda, err := f.sched.AgendaFor(ctx, "D002", scheduling.RangeThisWeek)
	require.NoError(t, err)
	ids := make([]string, len(agenda))
	for i, a := range agenda {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"C004", "C003", "C002", "C001"}, ids)

	// Sunday still reports the week that began on Monday
	f.clock.t = time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	agenda, err = f.sched.AgendaFor(ctx, "D002", scheduling.RangeThisWeek)
	require.NoError(t, err)
	assert.Len(t, agenda, 4)

	_, err = f.sched.AgendaFor(ctx, "D404", scheduling.RangeAll)
	assert.ErrorIs(t, err, application.ErrDoctorNotFound)
}

func TestListAndHistory(t *testing.T) {
	seed := []entity.Appointment{
		{ID: "C001", PatientID: "P001", DoctorID: "D002", Date: "2025-06-15", Time: "09:00", Status: entity.StatusScheduled},
		{ID: "C002", PatientID: "P002", DoctorID: "D001", Date: "2025-06-16", Time: "11:00", Status: entity.StatusScheduled},
		{ID: "C003", PatientID: "P001", DoctorID: "D001", Date: "2025-06-09", Time: "09:30", Status: entity.StatusCompleted},
	}
	f := newFixture(t, seed...)
	ctx := context.Background()

	all, err := f.sched.List(ctx, application.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C003", all[0].ID)
	assert.Equal(t, "Ana Pérez", all[0].PatientName)
	assert.Equal(t, "Dr. Lucía Gómez", all[0].DoctorName)
	assert.Equal(t, "Cardiology", all[0].Specialty)

	scheduled, err := f.sched.List(ctx, application.ListFilter{Status: entity.StatusScheduled, DoctorID: "D001"})
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "C002", scheduled[0].ID)

	history, err := f.sched.PatientHistory(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "C003", history[0].ID)
	assert.Equal(t, "C001", history[1].ID)

	_, err = f.sched.PatientHistory(ctx, "P404")
	assert.ErrorIs(t, err, application.ErrPatientNotFound)
}

func TestSchedulerWithoutLockerOrLogger(t *testing.T) {
	clock := &fixedClock{t: wednesday}
	s := application.NewScheduler(
		memory.NewStore[entity.Appointment](),
		memory.NewStore(ana),
		memory.NewStore(drMonday),
		idgen.Sequential{}, nil, clock, nil,
	)

	a, err := s.Schedule(context.Background(), req("D001", "2025-06-16", "09:00"))

	require.NoError(t, err)
	assert.Equal(t, "C001", a.ID)
}
