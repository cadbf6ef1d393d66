package scheduling

import "github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"

// HasConflict reports whether an active appointment already holds the slot
// (doctorID, date, clock). Cancelled and completed appointments never block.
func HasConflict(appointments []entity.Appointment, doctorID, date, clock string) bool {
	for _, a := range appointments {
		if a.IsActive() && a.DoctorID == doctorID && a.Date == date && a.Time == clock {
			return true
		}
	}
	return false
}
