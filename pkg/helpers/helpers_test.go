package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clinic-scheduler/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clinic-scheduler/pkg/mailer/templates"
)

func TestCancelTokenRoundTrip(t *testing.T) {
	m := NewCancelTokenManager("s3cret", time.Hour)

	token, exp, err := m.Generate("C042")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "C042", id)
}

func TestCancelTokenRejects(t *testing.T) {
	m := NewCancelTokenManager("s3cret", time.Hour)
	token, _, err := m.Generate("C042")
	require.NoError(t, err)

	_, err = NewCancelTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err, "wrong secret")

	_, err = m.Parse(token + "x")
	assert.Error(t, err, "tampered")

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.Error(t, err, "expired")

	_, _, err = NewCancelTokenManager("", time.Hour).Generate("C042")
	assert.Error(t, err, "no secret")
}

func TestHumanDate(t *testing.T) {
	assert.Equal(t, "Monday, 16 June 2025", HumanDate("2025-06-16", time.UTC))
	assert.Equal(t, "someday", HumanDate("someday", nil))
}

func TestTemplateForEvent(t *testing.T) {
	tpl, ok := TemplateForEvent("appointment.scheduled")
	assert.True(t, ok)
	assert.Equal(t, mailtpl.AppointmentScheduled, tpl)

	tpl, ok = TemplateForEvent(" Appointment.Cancelled ")
	assert.True(t, ok)
	assert.Equal(t, mailtpl.AppointmentCancelled, tpl)

	_, ok = TemplateForEvent("patient.registered")
	assert.False(t, ok)
}

func TestEnsureRecipient(t *testing.T) {
	job := mailer.EmailJob{To: "ana@example.com"}
	EnsureRecipient(&job)
	assert.Equal(t, "ana@example.com", job.Data["RecipientEmail"])

	job = mailer.EmailJob{To: "ana@example.com", Data: map[string]any{"RecipientEmail": "front@clinic.example"}}
	EnsureRecipient(&job)
	assert.Equal(t, "front@clinic.example", job.Data["RecipientEmail"])
}

type typedEvent struct {
	ID string `json:"id"`
}

func (typedEvent) MessageType() string { return "appointment.scheduled" }

func TestJSONPublishing(t *testing.T) {
	msg, err := jsonPublishing(typedEvent{ID: "C001"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"C001"}`, string(msg.Body))
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "appointment.scheduled", msg.Type)
	assert.Len(t, msg.MessageId, 36)

	other, err := jsonPublishing(map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Empty(t, other.Type)
	assert.NotEqual(t, msg.MessageId, other.MessageId)

	_, err = jsonPublishing(make(chan int))
	assert.Error(t, err)
}
