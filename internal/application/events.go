package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

// EventType names an appointment lifecycle event.
type EventType string

const (
	EventScheduled EventType = "appointment.scheduled"
	EventCancelled EventType = "appointment.cancelled"
	EventCompleted EventType = "appointment.completed"
)

// AppointmentEvent is the JSON payload published after every state change.
// Patient and doctor details are denormalized so consumers need no lookups.
type AppointmentEvent struct {
	Type          EventType     `json:"type"`
	AppointmentID string        `json:"appointment_id"`
	Status        entity.Status `json:"status"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Reason        string        `json:"reason"`
	PatientID     string        `json:"patient_id"`
	PatientName   string        `json:"patient_name,omitempty"`
	PatientEmail  string        `json:"patient_email,omitempty"`
	DoctorID      string        `json:"doctor_id"`
	DoctorName    string        `json:"doctor_name,omitempty"`
	Specialty     string        `json:"specialty,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// EventPublisher delivers events to a broker. helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// MessageType is the broker message type, e.g. "appointment.scheduled".
func (e AppointmentEvent) MessageType() string { return string(e.Type) }
