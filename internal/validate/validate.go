package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field-level validation failures for one operation.
// The zero value is ready to use.
type Errors struct {
	fields []FieldError
}

// Add records a failure for the named field.
func (e *Errors) Add(field, message string) {
	e.fields = append(e.fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failed.
func (e *Errors) HasErrors() bool {
	return len(e.fields) > 0
}

// Fields returns the recorded failures in insertion order.
func (e *Errors) Fields() []FieldError {
	return e.fields
}

// Required adds an error if the trimmed value is empty.
func (e *Errors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, fmt.Sprintf("%s is required", field))
	}
}

// Email adds an error if the value is not a parseable address. Empty
// values are skipped so Required can report them separately.
func (e *Errors) Email(field, value string) {
	if value == "" {
		return
	}
	if len(value) > 254 {
		e.Add(field, "email address is too long")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		e.Add(field, "invalid email format")
	}
}

// MinLength adds an error if the value is shorter than min runes.
func (e *Errors) MinLength(field, value string, min int) {
	if value == "" {
		return
	}
	if utf8.RuneCountInString(value) < min {
		e.Add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	}
}

// MaxLength adds an error if the value is longer than max runes.
func (e *Errors) MaxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		e.Add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

// OneOf adds an error unless the value equals one of the allowed values.
func (e *Errors) OneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}
