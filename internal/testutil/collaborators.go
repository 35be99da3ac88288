package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

// NewLogger returns a logger that discards output.
func NewLogger() *logging.Logger {
	return logging.NewFromHandler(slog.NewTextHandler(io.Discard, nil))
}

// SentEmail is one recorded email.
type SentEmail struct {
	Kind   string
	To     string
	Name   string
	Token  string
	Course user.Enrollment
}

// RecordingMailer records emails instead of sending them.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentEmail

	// Err, when set, is returned by every send after recording the attempt.
	Err error
}

func (m *RecordingMailer) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	return m.record(SentEmail{Kind: "welcome", To: toEmail, Name: name})
}

func (m *RecordingMailer) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	return m.record(SentEmail{Kind: "password_reset", To: toEmail, Token: token})
}

func (m *RecordingMailer) SendEnrollmentEmail(ctx context.Context, toEmail string, course user.Enrollment) error {
	return m.record(SentEmail{Kind: "enrollment", To: toEmail, Course: course})
}

func (m *RecordingMailer) record(e SentEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return m.Err
}

// Sent returns a copy of every recorded email.
func (m *RecordingMailer) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.sent...)
}

// Upload is one recorded image-host call.
type Upload struct {
	PublicID string
	Path     string
}

// RecordingImageHost records uploads.
type RecordingImageHost struct {
	mu      sync.Mutex
	uploads []Upload
	Err     error
}

func (h *RecordingImageHost) Upload(ctx context.Context, publicID, path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uploads = append(h.uploads, Upload{PublicID: publicID, Path: path})
	if h.Err != nil {
		return "", h.Err
	}
	return "https://images.example/" + publicID, nil
}

// Uploads returns a copy of every recorded upload.
func (h *RecordingImageHost) Uploads() []Upload {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Upload(nil), h.uploads...)
}

// LimiterCall is one recorded limiter call.
type LimiterCall struct {
	Purpose string
	Key     string
}

// StaticLimiter allows or denies every request and records resets.
type StaticLimiter struct {
	Allowed bool
	Err     error

	mu     sync.Mutex
	resets []LimiterCall
}

func (l *StaticLimiter) Allow(ctx context.Context, purpose, key string) (bool, error) {
	return l.Allowed, l.Err
}

func (l *StaticLimiter) Reset(ctx context.Context, purpose, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets = append(l.resets, LimiterCall{Purpose: purpose, Key: key})
	return l.Err
}

// Resets returns a copy of every recorded reset.
func (l *StaticLimiter) Resets() []LimiterCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LimiterCall(nil), l.resets...)
}
