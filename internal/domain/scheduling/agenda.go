package scheduling

import (
	"slices"
	"strings"
	"time"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

// Range selects which part of a doctor's agenda to return.
type Range string

const (
	RangeToday     Range = "today"
	RangeThisWeek  Range = "thisWeek"
	RangeNext7Days Range = "next7Days"
	RangeAll       Range = "all"
)

var rangeAliases = map[string]Range{
	"today":     RangeToday,
	"hoy":       RangeToday,
	"thisweek":  RangeThisWeek,
	"week":      RangeThisWeek,
	"semana":    RangeThisWeek,
	"next7days": RangeNext7Days,
	"proximos":  RangeNext7Days,
	"próximos":  RangeNext7Days,
	"all":       RangeAll,
	"todos":     RangeAll,
}

// ParseRange normalizes a range token. An empty string selects RangeAll.
func ParseRange(s string) (Range, bool) {
	if strings.TrimSpace(s) == "" {
		return RangeAll, true
	}
	r, ok := rangeAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

// Window returns the inclusive [from, to] date bounds of r relative to today.
// bounded is false for RangeAll.
func (r Range) Window(today time.Time) (from, to string, bounded bool) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	switch r {
	case RangeToday:
		d := day.Format(entity.DateLayout)
		return d, d, true
	case RangeThisWeek:
		// ISO numbering: Monday=1 ... Sunday=7
		n := int(day.Weekday())
		if n == 0 {
			n = 7
		}
		monday := day.AddDate(0, 0, -(n - 1))
		sunday := monday.AddDate(0, 0, 6)
		return monday.Format(entity.DateLayout), sunday.Format(entity.DateLayout), true
	case RangeNext7Days:
		return day.Format(entity.DateLayout), day.AddDate(0, 0, 7).Format(entity.DateLayout), true
	}
	return "", "", false
}

// Agenda returns the doctor's appointments inside r, ordered by (date, time).
// The input slice is not modified.
func Agenda(appointments []entity.Appointment, doctorID string, r Range, today time.Time) []entity.Appointment {
	from, to, bounded := r.Window(today)
	out := make([]entity.Appointment, 0)
	for _, a := range appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if bounded && (a.Date < from || a.Date > to) {
			continue
		}
		out = append(out, a)
	}
	SortByDateTime(out)
	return out
}

// SortByDateTime sorts appointments ascending by (date, time), stable on ties.
func SortByDateTime(appointments []entity.Appointment) {
	slices.SortStableFunc(appointments, func(a, b entity.Appointment) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
}
