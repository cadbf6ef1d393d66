package entity

import "time"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus accepts the canonical tokens and the ones written by the legacy front end.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "scheduled", "programada":
		return StatusScheduled, true
	case "completed", "completada":
		return StatusCompleted, true
	case "cancelled", "cancelada":
		return StatusCancelled, true
	}
	return "", false
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether s -> next is allowed.
// Only scheduled -> completed and scheduled -> cancelled exist.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusScheduled && next.IsTerminal()
}

// Appointment (cita) books a patient with a doctor for a single date and time.
// Patient and doctor are referenced by id only.
type Appointment struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patient_id"`
	DoctorID    string     `json:"doctor_id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Reason      string     `json:"reason"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (a Appointment) Clone() Appointment {
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		a.CancelledAt = &t
	}
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		a.CompletedAt = &t
	}
	return a
}

// IsActive reports whether the appointment still holds its slot.
func (a Appointment) IsActive() bool { return a.Status == StatusScheduled }

// Before orders appointments ascending by (date, time).
func (a Appointment) Before(b Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.Time < b.Time
}
