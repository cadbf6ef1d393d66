package entity

import (
	"slices"
	"strings"
)

// Doctor is a member of the medical staff with a weekly working window.
// Invariants: WorkStart < WorkEnd and AvailableDays is a non-empty set.
type Doctor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Specialty     string    `json:"specialty"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	WorkStart     string    `json:"work_start"`
	WorkEnd       string    `json:"work_end"`
	AvailableDays []Weekday `json:"available_days"`
}

func (d Doctor) Clone() Doctor {
	d.AvailableDays = slices.Clone(d.AvailableDays)
	return d
}

// WorksOn reports whether day is one of the doctor's available days.
func (d Doctor) WorksOn(day Weekday) bool {
	return slices.Contains(d.AvailableDays, day)
}

// Validate checks the doctor invariants and returns a field -> message map,
// or nil when the record is valid.
func (d Doctor) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(d.Name) == "" {
		problems["name"] = "is required"
	}
	if strings.TrimSpace(d.Specialty) == "" {
		problems["specialty"] = "is required"
	}
	switch {
	case !IsValidClock(d.WorkStart):
		problems["work_start"] = "must be a time in HH:MM format"
	case !IsValidClock(d.WorkEnd):
		problems["work_end"] = "must be a time in HH:MM format"
	case !IsValidWorkWindow(d.WorkStart, d.WorkEnd):
		problems["work_end"] = "must be after work_start"
	}
	if len(d.AvailableDays) == 0 {
		problems["available_days"] = "must contain at least one day"
	} else {
		seen := make(map[Weekday]bool, len(d.AvailableDays))
		for _, day := range d.AvailableDays {
			if !day.Valid() {
				problems["available_days"] = "contains an unknown day: " + string(day)
				break
			}
			if seen[day] {
				problems["available_days"] = "contains a duplicated day: " + string(day)
				break
			}
			seen[day] = true
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// DaysText joins the available days for display, e.g. in rejection messages.
func (d Doctor) DaysText() string {
	names := make([]string, len(d.AvailableDays))
	for i, day := range d.AvailableDays {
		names[i] = string(day)
	}
	return strings.Join(names, ", ")
}
