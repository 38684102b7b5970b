package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/account-service/internal/config"
)

// EmailSender delivers transactional email. Implementations may fail;
// callers treat delivery as best-effort.
type EmailSender interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Tags        []string       `json:"tags,omitempty"`
}

// HTTPEmailSender posts messages to a Brevo-compatible transactional
// email API.
type HTTPEmailSender struct {
	cfg    config.NotificationConfig
	client *http.Client
}

// NewHTTPEmailSender builds a sender with a bounded request timeout.
func NewHTTPEmailSender(cfg config.NotificationConfig) *HTTPEmailSender {
	return &HTTPEmailSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendWelcome greets a newly registered account.
func (s *HTTPEmailSender) SendWelcome(ctx context.Context, email, name string) error {
	body := fmt.Sprintf(
		"<h1>Welcome, %s!</h1><p>Your account has been created. You can now log in.</p>",
		name)
	return s.send(ctx, emailRequest{
		Sender:      emailAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		To:          []emailAddress{{Email: email, Name: name}},
		Subject:     "Welcome to " + s.cfg.FromName,
		HTMLContent: body,
		Tags:        []string{"welcome"},
	})
}

// SendPasswordReset delivers the single-use reset secret.
func (s *HTTPEmailSender) SendPasswordReset(ctx context.Context, email, token string) error {
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p>Your reset token is: <strong>%s</strong></p>"+
			"<p>It expires in one hour. If you did not request this, ignore this email.</p>",
		token)
	return s.send(ctx, emailRequest{
		Sender:      emailAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		To:          []emailAddress{{Email: email}},
		Subject:     "Password reset request",
		HTMLContent: body,
		Tags:        []string{"password-reset"},
	})
}

func (s *HTTPEmailSender) send(ctx context.Context, payload emailRequest) error {
	if s.cfg.APIKey == "" {
		return fmt.Errorf("email sender not configured")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email api returned status %d", resp.StatusCode)
	}
	return nil
}
