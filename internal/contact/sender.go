package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured means the transport credentials are missing or still
	// placeholders. It is detected before any network call.
	ErrNotConfigured = errors.New("email transport not configured")
	// ErrTransport wraps failures of the outbound call itself.
	ErrTransport = errors.New("email transport failed")
)

// Sender delivers a validated form to the site owner.
type Sender interface {
	Name() string
	Send(ctx context.Context, f Form) error
}

// DefaultEmailJSEndpoint is the provider's REST endpoint.
const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJS sends through the EmailJS REST API using a service, a template and
// a public key.
type EmailJS struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	ToEmail    string
	Endpoint   string
	Client     *http.Client
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (e *EmailJS) Name() string { return "emailjs" }

// Configured reports whether all credentials look real.
func (e *EmailJS) Configured() bool {
	return !isPlaceholder(e.ServiceID) && !isPlaceholder(e.TemplateID) &&
		!isPlaceholder(e.PublicKey) && !isPlaceholder(e.ToEmail)
}

func (e *EmailJS) Send(ctx context.Context, f Form) error {
	if !e.Configured() {
		return fmt.Errorf("%w: emailjs service, template, public key and destination are required", ErrNotConfigured)
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:  e.ServiceID,
		TemplateID: e.TemplateID,
		UserID:     e.PublicKey,
		TemplateParams: map[string]string{
			"from_name":  f.Name,
			"from_email": f.Email,
			"subject":    f.Subject,
			"message":    f.Message,
			"to_email":   e.ToEmail,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	endpoint := e.Endpoint
	if endpoint == "" {
		endpoint = DefaultEmailJSEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: emailjs status %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// isPlaceholder catches blank values and the sample values shipped in
// example configuration ("YOUR_SERVICE_ID", "service_xxx", ...).
func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" ||
		strings.HasPrefix(v, "your") ||
		strings.Contains(v, "placeholder") ||
		strings.Contains(v, "xxx") ||
		strings.Contains(v, "changeme")
}
