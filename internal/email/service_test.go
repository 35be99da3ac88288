package email

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/redmonkez12/learnhub-api/internal/config"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

type fakeDialer struct {
	mu       sync.Mutex
	messages []*gomail.Message
	err      error
	delay    time.Duration
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, m...)
	return d.err
}

func (d *fakeDialer) raw(t *testing.T, i int) string {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.Greater(t, len(d.messages), i)
	var buf bytes.Buffer
	_, err := d.messages[i].WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func newTestService(t *testing.T, d dialer, timeout time.Duration) *Service {
	t.Helper()
	svc, err := newService(d, config.EmailConfig{
		FromEmail:   "onboarding@learnhub.dev",
		FrontendURL: "https://app.learnhub.dev/",
		Timeout:     timeout,
	}, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestSendPasswordResetEmail(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestService(t, d, time.Second)

	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "ann@x.com", "abc_DEF-123"))

	raw := d.raw(t, 0)
	assert.Contains(t, raw, "To: ann@x.com")
	assert.Contains(t, raw, "Subject: Reset your password")

	body, err := svc.render(tmplPasswordReset, struct {
		ResetLink string
		ExpiresIn string
	}{ResetLink: "https://app.learnhub.dev/reset-password/abc_DEF-123", ExpiresIn: "1h0m0s"})
	require.NoError(t, err)
	assert.Contains(t, body, `href="https://app.learnhub.dev/reset-password/abc_DEF-123"`)
	assert.Contains(t, body, "This link expires in 1h0m0s.")
}

func TestResetLink(t *testing.T) {
	svc := newTestService(t, &fakeDialer{}, time.Second)
	assert.Equal(t, "https://app.learnhub.dev/reset-password/abc_DEF-123", svc.resetLink("abc_DEF-123"))
}

func TestSendEnrollmentEmail(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestService(t, d, time.Second)

	err := svc.SendEnrollmentEmail(context.Background(), "ann@x.com", user.Enrollment{ID: 5, CourseName: "Go", Price: 10, Level: "easy", Category: "dev"})
	require.NoError(t, err)

	assert.Contains(t, d.raw(t, 0), "Subject: Enrollment confirmed: Go")

	body, err := svc.render(tmplEnrollment, user.Enrollment{CourseName: "Go", Price: 10, Level: "easy", Category: "dev"})
	require.NoError(t, err)
	assert.Contains(t, body, "You are enrolled in Go")
	assert.Contains(t, body, "Price: 10.00")
}

func TestSend_Failures(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := newTestService(t, nil, time.Second)
		err := svc.SendWelcomeEmail(context.Background(), "ann@x.com", "Ann")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("relay error", func(t *testing.T) {
		relayErr := errors.New("535 authentication failed")
		svc := newTestService(t, &fakeDialer{err: relayErr}, time.Second)
		err := svc.SendWelcomeEmail(context.Background(), "ann@x.com", "Ann")
		assert.ErrorIs(t, err, relayErr)
	})

	t.Run("timeout", func(t *testing.T) {
		svc := newTestService(t, &fakeDialer{delay: 200 * time.Millisecond}, 10*time.Millisecond)
		err := svc.SendWelcomeEmail(context.Background(), "ann@x.com", "Ann")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNotificationFrom(t *testing.T) {
	assert.Equal(t, Notification{Sent: true}, NotificationFrom(nil))
	assert.Equal(t, Notification{Sent: false, Error: "boom"}, NotificationFrom(errors.New("boom")))
}
