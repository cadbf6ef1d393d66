package mailer

// EmailJob is one rendered-or-renderable email. Template names a base name
// under pkg/mailer/templates; when set, Subject/Text/HTML are produced from it.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "appointment_scheduled"
	Data     map[string]any `json:"data,omitempty"`
}
