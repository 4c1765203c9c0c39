// Package contact validates contact form submissions and hands them to an
// email transport.
package contact

import (
	"regexp"
	"strings"
)

// Form field names, as posted by the contact form.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// Fields lists the form fields in display order.
var Fields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is one contact form submission.
type Form struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Subject string `form:"subject"`
	Message string `form:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

// Value returns the value of the named field.
func (f Form) Value(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldSubject:
		return f.Subject
	case FieldMessage:
		return f.Message
	}
	return ""
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// Get returns the message for field, or "".
func (e FieldErrors) Get(field string) string { return e[field] }

// Has reports whether field failed validation.
func (e FieldErrors) Has(field string) bool { return e[field] != "" }

// Clear drops the error for field, leaving the others untouched. It is used
// when the user edits that field.
func (e FieldErrors) Clear(field string) { delete(e, field) }

// Empty reports whether there are no errors.
func (e FieldErrors) Empty() bool { return len(e) == 0 }

// Validate checks every field and returns the failures, keyed by field.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}
	for _, field := range Fields {
		if msg := f.ValidateField(field); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateField checks a single field and returns its message, or "" when valid.
func (f Form) ValidateField(field string) string {
	v := strings.TrimSpace(f.Value(field))
	switch field {
	case FieldName:
		if v == "" {
			return "Name is required"
		}
	case FieldEmail:
		if v == "" {
			return "Email is required"
		}
		if !emailRe.MatchString(v) {
			return "Email is invalid"
		}
	case FieldSubject:
		if v == "" {
			return "Subject is required"
		}
	case FieldMessage:
		if v == "" {
			return "Message is required"
		}
	}
	return ""
}

// IsField reports whether name is a known form field.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}
