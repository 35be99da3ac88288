package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/redmonkez12/learnhub-api/internal/config"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
	"github.com/redmonkez12/learnhub-api/templates"
)

// ErrNotConfigured is returned when no SMTP relay is configured.
var ErrNotConfigured = errors.New("email delivery is not configured")

const (
	tmplWelcome       = "welcome.html"
	tmplPasswordReset = "password_reset.html"
	tmplEnrollment    = "enrollment.html"
)

// Notification reports the outcome of a best-effort email.
type Notification struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// NotificationFrom builds a Notification from a send error.
func NotificationFrom(err error) Notification {
	if err != nil {
		return Notification{Sent: false, Error: err.Error()}
	}
	return Notification{Sent: true}
}

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	dialer      dialer
	fromEmail   string
	frontendURL string
	timeout     time.Duration
	resetTTL    time.Duration
	templates   map[string]*template.Template
}

// NewService builds the SMTP mail service. The mail provider API key doubles
// as the SMTP password when no explicit one is set.
func NewService(cfg config.EmailConfig, resetTTL time.Duration) (*Service, error) {
	var d dialer
	if cfg.SMTPHost != "" {
		d = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	return newService(d, cfg, resetTTL)
}

func newService(d dialer, cfg config.EmailConfig, resetTTL time.Duration) (*Service, error) {
	tmpls := make(map[string]*template.Template)
	for _, name := range []string{tmplWelcome, tmplPasswordReset, tmplEnrollment} {
		t, err := template.ParseFS(templates.EmailFS, "email/base.html", "email/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		tmpls[name] = t
	}

	return &Service{
		dialer:      d,
		fromEmail:   cfg.FromEmail,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		timeout:     cfg.Timeout,
		resetTTL:    resetTTL,
		templates:   tmpls,
	}, nil
}

// SendWelcomeEmail confirms a new account to the user
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	data := struct{ Name string }{Name: name}
	return s.deliver(ctx, toEmail, "Welcome to LearnHub", tmplWelcome, data)
}

// SendPasswordResetEmail sends a password reset link to the user
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	data := struct {
		ResetLink string
		ExpiresIn string
	}{
		ResetLink: s.resetLink(token),
		ExpiresIn: s.resetTTL.String(),
	}
	return s.deliver(ctx, toEmail, "Reset your password", tmplPasswordReset, data)
}

func (s *Service) resetLink(token string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.frontendURL, url.PathEscape(token))
}

// SendEnrollmentEmail confirms a course enrollment
func (s *Service) SendEnrollmentEmail(ctx context.Context, toEmail string, course user.Enrollment) error {
	return s.deliver(ctx, toEmail, "Enrollment confirmed: "+course.CourseName, tmplEnrollment, course)
}

func (s *Service) deliver(ctx context.Context, to, subject, tmplName string, data any) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := s.render(tmplName, data)
	if err != nil {
		logger.Error("failed to render email template", "template", tmplName, "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent", "template", tmplName, "email", to)
	return nil
}

func (s *Service) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "base.html", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// send delivers one message, giving up when ctx ends or the configured timeout passes.
func (s *Service) send(ctx context.Context, to, subject, body string) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
