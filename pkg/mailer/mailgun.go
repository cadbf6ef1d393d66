package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

const sendTimeout = 10 * time.Second

// Mailgun sends appointment notifications through one Mailgun domain.
type Mailgun struct {
	From   string
	Tag    string // optional Mailgun tag for delivery analytics
	client *mg.MailgunImpl
}

// NewMailgun builds a sender. apiBase may be empty for the US region or
// mg.APIBaseEU for EU domains.
func NewMailgun(domain, apiKey, from, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{From: from, client: client}
}

// Send delivers a message with a plain-text body and an optional HTML part.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.From, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if m.Tag != "" {
		if err := msg.AddTag(m.Tag); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
