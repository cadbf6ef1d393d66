package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// Weekday is a locale-independent day token used for availability matching.
type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// weekdays is indexed by time.Weekday.
var weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// legacy day names stored by the original front end
var weekdayAliases = map[string]Weekday{
	"domingo":   Sunday,
	"lunes":     Monday,
	"martes":    Tuesday,
	"miércoles": Wednesday,
	"miercoles": Wednesday,
	"jueves":    Thursday,
	"viernes":   Friday,
	"sábado":    Saturday,
	"sabado":    Saturday,
}

// WeekdayFrom maps a time.Weekday to its token.
func WeekdayFrom(d time.Weekday) Weekday { return weekdays[d] }

// ParseWeekday normalizes s (case-insensitive, English or Spanish) to a Weekday.
func ParseWeekday(s string) (Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, d := range weekdays {
		if strings.ToLower(string(d)) == key {
			return d, true
		}
	}
	d, ok := weekdayAliases[key]
	return d, ok
}

func (d Weekday) Valid() bool {
	for _, w := range weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// UnmarshalJSON normalizes known names; unknown names are kept verbatim so that
// Doctor.Validate can report them.
func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if w, ok := ParseWeekday(s); ok {
		*d = w
		return nil
	}
	*d = Weekday(s)
	return nil
}
