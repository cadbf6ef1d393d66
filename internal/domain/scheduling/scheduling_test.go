package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(entity.DateLayout, s, time.UTC)
	require.NoError(t, err)
	return d
}

var mondayDoctor = entity.Doctor{
	ID:            "D001",
	Name:          "Dr. Ana",
	WorkStart:     "09:00",
	WorkEnd:       "12:00",
	AvailableDays: []entity.Weekday{entity.Monday},
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, entity.Monday, WeekdayOf(day(t, "2025-06-16")))
	assert.Equal(t, entity.Sunday, WeekdayOf(day(t, "2025-06-15")))

	// a date that is midnight in a zone far east of UTC stays on its own day
	tokyo := time.FixedZone("JST", 9*3600)
	d := time.Date(2025, 6, 16, 0, 0, 0, 0, tokyo)
	assert.Equal(t, entity.Monday, WeekdayOf(d))
}

func TestIsWithinSchedule(t *testing.T) {
	monday := day(t, "2025-06-16")
	tuesday := day(t, "2025-06-17")

	assert.Equal(t, Availability{Reason: DayNotAvailable}, IsWithinSchedule(mondayDoctor, tuesday, "10:00"))
	assert.Equal(t, Availability{Reason: OutOfHours}, IsWithinSchedule(mondayDoctor, monday, "13:00"))
	assert.Equal(t, Availability{Reason: OutOfHours}, IsWithinSchedule(mondayDoctor, monday, "08:59"))
	assert.True(t, IsWithinSchedule(mondayDoctor, monday, "09:00").OK)
	assert.True(t, IsWithinSchedule(mondayDoctor, monday, "10:00").OK)
	// end of the window is inclusive
	assert.True(t, IsWithinSchedule(mondayDoctor, monday, "12:00").OK)
	assert.False(t, IsWithinSchedule(mondayDoctor, monday, "12:01").OK)
}

func TestHasConflict(t *testing.T) {
	appts := []entity.Appointment{
		{ID: "C001", DoctorID: "D001", Date: "2025-06-16", Time: "10:00", Status: entity.StatusCancelled},
		{ID: "C002", DoctorID: "D001", Date: "2025-06-16", Time: "11:00", Status: entity.StatusCompleted},
		{ID: "C003", DoctorID: "D001", Date: "2025-06-16", Time: "09:00", Status: entity.StatusScheduled},
	}
	assert.False(t, HasConflict(appts, "D001", "2025-06-16", "10:00"))
	assert.False(t, HasConflict(appts, "D001", "2025-06-16", "11:00"))
	assert.True(t, HasConflict(appts, "D001", "2025-06-16", "09:00"))
	assert.False(t, HasConflict(appts, "D002", "2025-06-16", "09:00"))
	assert.False(t, HasConflict(appts, "D001", "2025-06-23", "09:00"))
	assert.False(t, HasConflict(nil, "D001", "2025-06-16", "09:00"))
}

func TestParseRange(t *testing.T) {
	for in, want := range map[string]Range{
		"":          RangeAll,
		"today":     RangeToday,
		"hoy":       RangeToday,
		"thisWeek":  RangeThisWeek,
		"semana":    RangeThisWeek,
		"next7Days": RangeNext7Days,
		"proximos":  RangeNext7Days,
		"todos":     RangeAll,
	} {
		got, ok := ParseRange(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseRange("yesterday")
	assert.False(t, ok)
}

func TestRangeWindow(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 15, 45, 0, 0, time.UTC)

	from, to, bounded := RangeThisWeek.Window(wednesday)
	assert.True(t, bounded)
	assert.Equal(t, "2025-06-09", from)
	assert.Equal(t, "2025-06-15", to)

	// Sunday belongs to the week that started the previous Monday
	sunday := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	from, to, _ = RangeThisWeek.Window(sunday)
	assert.Equal(t, "2025-06-09", from)
	assert.Equal(t, "2025-06-15", to)

	monday := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	from, to, _ = RangeThisWeek.Window(monday)
	assert.Equal(t, "2025-06-09", from)
	assert.Equal(t, "2025-06-15", to)

	from, to, _ = RangeNext7Days.Window(wednesday)
	assert.Equal(t, "2025-06-11", from)
	assert.Equal(t, "2025-06-18", to)

	from, to, _ = RangeToday.Window(wednesday)
	assert.Equal(t, "2025-06-11", from)
	assert.Equal(t, "2025-06-11", to)

	_, _, bounded = RangeAll.Window(wednesday)
	assert.False(t, bounded)
}

func TestAgenda(t *testing.T) {
	today := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	appts := []entity.Appointment{
		{ID: "C001", DoctorID: "D001", Date: "2025-06-15", Time: "09:00"},
		{ID: "C002", DoctorID: "D001", Date: "2025-06-11", Time: "11:00"},
		{ID: "C003", DoctorID: "D001", Date: "2025-06-11", Time: "09:30", Status: entity.StatusCancelled},
		{ID: "C004", DoctorID: "D001", Date: "2025-06-09", Time: "10:00"},
		{ID: "C005", DoctorID: "D001", Date: "2025-06-16", Time: "10:00"},
		{ID: "C006", DoctorID: "D001", Date: "2025-06-08", Time: "10:00"},
		{ID: "C007", DoctorID: "D002", Date: "2025-06-12", Time: "10:00"},
		{ID: "C008", DoctorID: "D001", Date: "2025-06-18", Time: "08:00"},
	}
	ids := func(as []entity.Appointment) []string {
		out := make([]string, len(as))
		for i, a := range as {
			out[i] = a.ID
		}
		return out
	}

	assert.Equal(t, []string{"C004", "C003", "C002", "C001"}, ids(Agenda(appts, "D001", RangeThisWeek, today)))
	assert.Equal(t, []string{"C003", "C002"}, ids(Agenda(appts, "D001", RangeToday, today)))
	assert.Equal(t, []string{"C003", "C002", "C001", "C005", "C008"}, ids(Agenda(appts, "D001", RangeNext7Days, today)))
	assert.Equal(t, []string{"C006", "C004", "C003", "C002", "C001", "C005", "C008"}, ids(Agenda(appts, "D001", RangeAll, today)))
	assert.Empty(t, Agenda(appts, "D009", RangeAll, today))

	// input order is untouched
	assert.Equal(t, "C001", appts[0].ID)
}
