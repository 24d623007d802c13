// Package response builds the uniform JSON envelope every API endpoint
// returns. Success and failure share one shape so clients can always read
// success, statusCode, timestamp, and meta without sniffing the payload.
package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes carried in the envelope's error body. The set is closed:
// handlers map every failure to one of these.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeDuplicateOrgName   = "DUPLICATE_ORG_NAME"
	CodeOrgNotFound        = "ORG_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeRegisterError      = "REGISTER_ERROR"
	CodeLoginError         = "LOGIN_ERROR"
	CodeLogoutError        = "LOGOUT_ERROR"
	CodeFetchUserError     = "FETCH_USER_ERROR"
	CodeCreateOrgError     = "CREATE_ORG_ERROR"
	CodeFetchOrgError      = "FETCH_ORG_ERROR"
	CodeFetchOrgsError     = "FETCH_ORGS_ERROR"
	CodeUpdateOrgError     = "UPDATE_ORG_ERROR"
	CodeDeleteOrgError     = "DELETE_ORG_ERROR"
)

// Error categories.
const (
	CategoryValidation     = "validation"
	CategoryAuthentication = "authentication"
	CategoryConflict       = "conflict"
	CategoryNotFound       = "not_found"
	CategorySystem         = "system"
)

// ErrorBody is the error part of a failure envelope.
type ErrorBody struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Category string      `json:"category,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

// Meta carries response metadata.
type Meta struct {
	// ProcessingTime is the handler latency in milliseconds.
	ProcessingTime int64  `json:"processingTime"`
	DataType       string `json:"dataType"`
}

// Envelope is the uniform response shape.
type Envelope struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	StatusCode  int         `json:"statusCode"`
	Data        interface{} `json:"data,omitempty"`
	Error       *ErrorBody  `json:"error,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	Timestamp   string      `json:"timestamp"`
	Meta        Meta        `json:"meta"`
	ContentType string      `json:"contentType"`
}

// Builder stamps envelopes with the elapsed handler time. Create one at the
// top of a handler with Start.
type Builder struct {
	start time.Time
}

// Start begins timing a response.
func Start() *Builder {
	return &Builder{start: time.Now()}
}

func (b *Builder) envelope(status int, success bool, message string) Envelope {
	return Envelope{
		Success:     success,
		Message:     message,
		StatusCode:  status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Meta:        Meta{ProcessingTime: time.Since(b.start).Milliseconds(), DataType: "JSON"},
		ContentType: "application/json",
	}
}

// OK writes a success envelope. The HTTP status and the statusCode field
// always agree.
func (b *Builder) OK(c *gin.Context, status int, message string, data interface{}) {
	env := b.envelope(status, true, message)
	env.Data = data
	c.JSON(status, env)
}

// Fail writes a failure envelope with the given error code and category.
func (b *Builder) Fail(c *gin.Context, status int, message, code, category string) {
	b.FailDetails(c, status, message, code, category, nil)
}

// FailDetails is Fail with a structured details payload, used for field-level
// validation errors.
func (b *Builder) FailDetails(c *gin.Context, status int, message, code, category string, details interface{}) {
	env := b.envelope(status, false, message)
	env.Error = &ErrorBody{Code: code, Message: message, Category: category, Details: details}
	c.JSON(status, env)
}
