package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clinic = Clinic{Name: "Clínica Norte", Address: "Av. Central 123", AppName: "clinic-scheduler"}

func TestRenderScheduled(t *testing.T) {
	exp := time.Date(2025, 7, 11, 10, 0, 0, 0, time.UTC)
	data := NewAppointmentData(clinic, AppointmentScheduled, "C001", "Ana Pérez", "ana@example.com",
		"Dr. Lucía Gómez", "2025-06-16", "10:00",
		WithDateText("Monday, 16 June 2025"),
		WithSpecialty("Cardiology"),
		WithReason("checkup"),
		WithCancelURL("https://clinic.example/cancel?token=abc&x=1", exp),
	)

	subject, text, html, err := Render(AppointmentScheduled, data)
	require.NoError(t, err)

	assert.Equal(t, "Appointment confirmed: Monday, 16 June 2025 at 10:00", subject)
	assert.Contains(t, text, "Hello Ana Pérez,")
	assert.Contains(t, text, "Dr. Lucía Gómez (Cardiology)")
	assert.Contains(t, text, "Reason:    checkup")
	assert.Contains(t, text, "https://clinic.example/cancel?token=abc&x=1")
	assert.Contains(t, html, "<strong>C001</strong>")
	assert.Contains(t, html, `href="https://clinic.example/cancel?token=abc&amp;x=1"`)
	assert.Contains(t, html, "Clínica Norte")
}

func TestRenderDefaults(t *testing.T) {
	data := NewAppointmentData(Clinic{AppName: "clinic-scheduler"}, AppointmentCancelled, "C002", "", "x@example.com",
		"Dr. Omar Ruiz", "2025-06-17", "09:00", WithDateText("  "))

	subject, text, _, err := Render(AppointmentCancelled, data)
	require.NoError(t, err)

	assert.Equal(t, "Appointment cancelled: 2025-06-17 at 09:00", subject)
	assert.Contains(t, text, "clinic-scheduler")
	assert.NotContains(t, text, "cancel here")
}

func TestRenderEveryTemplate(t *testing.T) {
	for _, name := range []string{AppointmentScheduled, AppointmentCancelled, AppointmentCompleted} {
		data := NewAppointmentData(clinic, name, "C003", "Bob", "bob@example.com", "Dr. X", "2025-06-18", "11:00")
		subject, text, html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.NotEmpty(t, subject, name)
		assert.Contains(t, text, "Bob", name)
		assert.Contains(t, html, "2025-06-18", name)
	}

	_, _, _, err := Render("appointment_rescheduled", map[string]any{})
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "fallback", defaultFn("fallback", ""))
	assert.Equal(t, "fallback", defaultFn("fallback", nil))
	assert.Equal(t, "fallback", defaultFn("fallback", 0))
	assert.Equal(t, "value", defaultFn("fallback", "value"))
	assert.Equal(t, 3, defaultFn("fallback", 3))
}
