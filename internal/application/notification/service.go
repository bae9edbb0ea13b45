package notification

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
)

// Template names understood by Send.
const (
	TemplateOTP        = "otp"
	TemplateNomination = "nomination"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is one outbound notification. Mobile and SMS are optional; when
// both are set a text copy is sent alongside the email.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
	Mobile   string
	SMS      string
}

type Service interface {
	Send(ctx context.Context, msg Message) error
}

type mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	mailer    mailer
	smsSender smsSender
	templates *template.Template
}

// NewService parses the embedded templates. smsSender may be nil.
func NewService(m mailer, sms smsSender) (Service, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}
	return &service{mailer: m, smsSender: sms, templates: tmpl}, nil
}

// Send renders and dispatches msg on every configured channel. All channels
// are attempted; the returned error joins the failures.
func (s *service) Send(ctx context.Context, msg Message) error {
	var errs []error

	body, err := s.render(msg.Template, msg.Data)
	if err != nil {
		errs = append(errs, err)
	} else if err := s.mailer.SendEmail(msg.To, msg.Subject, body); err != nil {
		errs = append(errs, fmt.Errorf("send email: %w", err))
	}

	if msg.Mobile != "" && msg.SMS != "" {
		if s.smsSender == nil {
			slog.Debug("sms channel not configured, skipping", "template", msg.Template)
		} else if err := s.smsSender.SendSMS(ctx, msg.Mobile, msg.SMS); err != nil {
			errs = append(errs, fmt.Errorf("send sms: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}
