package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines the fields available to appointment templates.
type EmailData struct {
	Type           string `json:"Type"`
	PatientName    string `json:"PatientName"`
	RecipientEmail string `json:"RecipientEmail"`

	AppointmentID string `json:"AppointmentID"`
	DoctorName    string `json:"DoctorName"`
	Specialty     string `json:"Specialty"`
	Date          string `json:"Date"`
	DateText      string `json:"DateText"`
	Time          string `json:"Time"`
	Reason        string `json:"Reason"`

	// Clinic info
	ClinicName    string `json:"ClinicName"`
	ClinicAddress string `json:"ClinicAddress"`
	AppName       string `json:"AppName"`

	// Action URLs
	CancelURL       string    `json:"CancelURL"`
	CancelExpiresAt time.Time `json:"CancelExpiresAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

// Template names, one per appointment event.
const (
	AppointmentScheduled = "appointment_scheduled"
	AppointmentCancelled = "appointment_cancelled"
	AppointmentCompleted = "appointment_completed"
)

// Every template is parsed once; a malformed file fails at init.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(textFuncMap).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(htmlFuncMap).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, filename string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("render %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render produces the subject, text and html bodies of template name from
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
