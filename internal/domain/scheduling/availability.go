package scheduling

import (
	"time"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

// Rejection names why a candidate slot falls outside a doctor's capacity.
type Rejection string

const (
	DayNotAvailable Rejection = "DayNotAvailable"
	OutOfHours      Rejection = "OutOfHours"
)

// Availability is the outcome of IsWithinSchedule. Reason is empty when OK.
type Availability struct {
	OK     bool
	Reason Rejection
}

// WeekdayOf maps a calendar date to its weekday. The date is pinned to noon so
// that no offset can push it across a day boundary.
func WeekdayOf(date time.Time) entity.Weekday {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	return entity.WeekdayFrom(noon.Weekday())
}

// IsWithinSchedule decides whether clock on date fits the doctor's declared
// days and hours. The working window is inclusive at both ends: a time equal
// to WorkEnd is accepted.
func IsWithinSchedule(doctor entity.Doctor, date time.Time, clock string) Availability {
	if !doctor.WorksOn(WeekdayOf(date)) {
		return Availability{Reason: DayNotAvailable}
	}
	if clock < doctor.WorkStart || clock > doctor.WorkEnd {
		return Availability{Reason: OutOfHours}
	}
	return Availability{OK: true}
}
