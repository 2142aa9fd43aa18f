package translate

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoBaseURL is returned when the endpoint base URL is missing.
	ErrNoBaseURL = errors.New("translate: base URL required")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("translate: base URL must be an absolute http(s) URL")

	// ErrInvalidTimeout is returned for a zero or negative timeout.
	ErrInvalidTimeout = errors.New("translate: timeout must be positive")

	// ErrNoImage is returned when Translate is called without image data.
	ErrNoImage = errors.New("translate: image required")

	// ErrNoLanguage is returned when Translate is called without a language code.
	ErrNoLanguage = errors.New("translate: language code required")

	// ErrNotString is returned when the response body is JSON but not a string.
	ErrNotString = errors.New("translate: response is not a JSON string")
)

// Kind classifies a translation failure.
type Kind string

const (
	KindInvalid   Kind = "invalid"   // bad input, nothing was sent
	KindNetwork   Kind = "network"   // request could not be sent or read
	KindTimeout   Kind = "timeout"   // deadline exceeded
	KindCanceled  Kind = "canceled"  // caller canceled
	KindStatus    Kind = "status"    // non-200 response
	KindMalformed Kind = "malformed" // body not a JSON string
)

// Error is returned by Client.Translate for every failure.
type Error struct {
	Kind Kind
	Op   string // "build", "send", "read", "decode"
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("translate [%s] %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsTimeout reports whether err is a translation timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsMalformed reports whether the endpoint answered with an unusable body.
func IsMalformed(err error) bool { return KindOf(err) == KindMalformed }

// IsNetwork reports whether the request failed in transport, timed out,
// or got a non-200 answer.
func IsNetwork(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindStatus:
		return true
	}
	return false
}

// APIError represents a non-200 response from the translation endpoint.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the endpoint, if any.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("translate: API error %d", e.StatusCode)
	}
	return fmt.Sprintf("translate: API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsClientError returns true for 4xx responses.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
