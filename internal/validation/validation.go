// Package validation contains input validation helpers for the HTTP API.
// Payloads are decoded strictly: unknown fields are rejected so that client
// typos surface as errors instead of silently dropped data.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// MaxPasswordLength is the longest accepted password in bytes. bcrypt only
// hashes the first 72 bytes, so anything longer is rejected up front.
const MaxPasswordLength = 72

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a collection of field errors for one request payload.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "invalid request"
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// DecodeStrict decodes a JSON payload into dst, rejecting unknown fields and
// trailing content.
func DecodeStrict(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second token means trailing garbage after the JSON document.
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected trailing content")
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// CheckEmail appends a field error when the email is missing or malformed.
func CheckEmail(errs Errors, field, value string) Errors {
	if value == "" {
		return append(errs, FieldError{Field: field, Message: "email is required"})
	}
	if !ValidEmail(value) {
		return append(errs, FieldError{Field: field, Message: "invalid email address"})
	}
	return errs
}

// CheckPassword appends a field error when the password is too short or too
// long.
func CheckPassword(errs Errors, field, value string) Errors {
	if len(value) < MinPasswordLength {
		return append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}
	if len(value) > MaxPasswordLength {
		return append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("password must be at most %d characters", MaxPasswordLength),
		})
	}
	return errs
}

// CheckRequired appends a field error when a required string is empty after
// trimming whitespace.
func CheckRequired(errs Errors, field, value string) Errors {
	if strings.TrimSpace(value) == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	return errs
}
