package contact

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTP sends the form as a plain-text email through an authenticated relay.
type SMTP struct {
	Host    string
	Port    string
	User    string
	Pass    string
	ToEmail string

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTP) Name() string { return "smtp" }

// Configured reports whether credentials and destination are set.
func (s *SMTP) Configured() bool {
	return s.Host != "" && s.Port != "" && !isPlaceholder(s.User) && !isPlaceholder(s.Pass) && !isPlaceholder(s.ToEmail)
}

func (s *SMTP) Send(ctx context.Context, f Form) error {
	if !s.Configured() {
		return fmt.Errorf("%w: SMTP credentials not configured", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	if err := send(s.Host+":"+s.Port, auth, s.User, []string{s.ToEmail}, s.compose(f)); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (s *SMTP) compose(f Form) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe(f.Subject))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, f.Name, f.Email, f.Subject, f.Message)

	return []byte("To: " + s.ToEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.User + "\r\n" +
		"Reply-To: " + headerSafe(f.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerSafe strips line breaks so user input cannot add headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
