package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-clinic-scheduler/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clinic-scheduler/pkg/mailer/templates"
)

// TemplateForEvent maps an appointment event type to its email template.
func TemplateForEvent(eventType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "appointment.scheduled":
		return mailtpl.AppointmentScheduled, true
	case "appointment.cancelled":
		return mailtpl.AppointmentCancelled, true
	case "appointment.completed":
		return mailtpl.AppointmentCompleted, true
	}
	return "", false
}

// EnsureRecipient fills Data["RecipientEmail"] from job.To when missing.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
