package templates

import (
	"strings"
	"time"
)

// Clinic identifies the sender in every email.
type Clinic struct {
	Name    string
	Address string
	AppName string
}

// Option pattern
type Option func(*EmailData)

func WithCancelURL(url string, expiresAt time.Time) Option {
	return func(d *EmailData) {
		d.CancelURL = url
		d.CancelExpiresAt = expiresAt.UTC()
	}
}

func WithDateText(s string) Option {
	return func(d *EmailData) {
		if s = strings.TrimSpace(s); s != "" {
			d.DateText = s
		}
	}
}

func WithSpecialty(s string) Option { return func(d *EmailData) { d.Specialty = s } }
func WithReason(s string) Option    { return func(d *EmailData) { d.Reason = s } }

// NewAppointmentData fills the common fields and applies opts. DateText
// defaults to the raw date.
func NewAppointmentData(c Clinic, typ, appointmentID, patientName, recipient, doctorName, date, clock string, opts ...Option) map[string]any {
	d := EmailData{
		Type:           typ,
		PatientName:    patientName,
		RecipientEmail: recipient,
		AppointmentID:  appointmentID,
		DoctorName:     doctorName,
		Date:           date,
		DateText:       date,
		Time:           clock,

		ClinicName:    c.Name,
		ClinicAddress: c.Address,
		AppName:       c.AppName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
