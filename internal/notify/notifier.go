package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
	"github.com/oksasatya/go-clinic-scheduler/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clinic-scheduler/pkg/mailer/templates"
)

// ErrPermanent marks a message that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent failure")

// TokenIssuer signs cancellation tokens.
type TokenIssuer interface {
	Generate(appointmentID string) (string, time.Time, error)
}

// Notifier turns appointment events into patient emails.
type Notifier struct {
	Sender    mailer.Sender
	Clinic    mailtpl.Clinic
	Location  *time.Location
	Logger    *logrus.Logger
	Tokens    TokenIssuer // optional
	CancelURL string      // base URL; the token is appended as ?token=
	Timeout   time.Duration
}

// NewNotifier builds a notifier; a nil logger discards output.
func NewNotifier(sender mailer.Sender, clinic mailtpl.Clinic, loc *time.Location, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Notifier{Sender: sender, Clinic: clinic, Location: loc, Logger: logger}
}

// Handle processes one queue message. Errors wrapping ErrPermanent should be
// dropped; any other error is worth a retry.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var ev application.AppointmentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: decode event: %v", ErrPermanent, err)
	}
	job, ok, err := n.Job(ev)
	if err != nil {
		return err
	}
	if !ok {
		n.log().WithFields(logrus.Fields{"event": ev.Type, "appointment_id": ev.AppointmentID}).
			Debug("event skipped")
		return nil
	}

	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := n.Sender.Send(c, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send %s to %s: %w", job.Template, job.To, err)
	}
	n.log().WithFields(logrus.Fields{
		"event":          ev.Type,
		"appointment_id": ev.AppointmentID,
		"template":       job.Template,
	}).Info("notification sent")
	return nil
}

// Job builds the email for ev. ok is false when the event needs no email,
// e.g. an unknown type or a patient without an address.
func (n *Notifier) Job(ev application.AppointmentEvent) (mailer.EmailJob, bool, error) {
	tpl, ok := helpers.TemplateForEvent(string(ev.Type))
	if !ok || ev.PatientEmail == "" {
		return mailer.EmailJob{}, false, nil
	}

	opts := []mailtpl.Option{
		mailtpl.WithDateText(helpers.HumanDate(ev.Date, n.Location)),
		mailtpl.WithSpecialty(ev.Specialty),
		mailtpl.WithReason(ev.Reason),
	}
	if ev.Type == application.EventScheduled && n.Tokens != nil && n.CancelURL != "" {
		token, exp, err := n.Tokens.Generate(ev.AppointmentID)
		if err != nil {
			return mailer.EmailJob{}, false, fmt.Errorf("%w: sign cancel link: %v", ErrPermanent, err)
		}
		opts = append(opts, mailtpl.WithCancelURL(cancelLink(n.CancelURL, token), exp))
	}

	job := mailer.EmailJob{
		To:       ev.PatientEmail,
		Template: tpl,
		Data: mailtpl.NewAppointmentData(n.Clinic, tpl, ev.AppointmentID, ev.PatientName, ev.PatientEmail,
			ev.DoctorName, ev.Date, ev.Time, opts...),
	}
	helpers.EnsureRecipient(&job)
	return job, true, nil
}

func cancelLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

var nopLogger = helpers.NewNopLogger()

// log never writes to n, so Handle is safe to call from several goroutines.
func (n *Notifier) log() *logrus.Logger {
	if n.Logger == nil {
		return nopLogger
	}
	return n.Logger
}
