package flow

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/permission"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

// Sentinel errors for common conditions.
var (
	// ErrBusy is returned when a run is triggered while another is in flight.
	ErrBusy = errors.New("flow: busy")

	// ErrClosed is returned when triggering a closed controller.
	ErrClosed = errors.New("flow: closed")
)

// Class is the user-facing failure category.
type Class string

const (
	ClassPermission Class = "permission"
	ClassCapture    Class = "capture"
	ClassNetwork    Class = "network"
	ClassMalformed  Class = "malformed"
)

// Failure is a classified run failure.
type Failure struct {
	Class Class
	Err   error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("flow [%s]: %v", f.Class, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Cancelled reports whether the user backed out of the picker.
func (f *Failure) Cancelled() bool {
	return f.Class == ClassCapture && capture.IsCancelled(f.Err)
}

// Message returns the notice shown to the user.
func (f *Failure) Message() string {
	switch f.Class {
	case ClassPermission:
		return permission.DeniedMessage
	case ClassCapture:
		return "Could not get the photo. Please try again."
	case ClassMalformed:
		return "The translation service sent an unreadable answer."
	}
	if translate.IsTimeout(f.Err) {
		return "The translation service did not answer in time."
	}
	var apiErr *translate.APIError
	if errors.As(f.Err, &apiErr) && apiErr.IsRateLimited() {
		return "The translation service is busy. Please try again later."
	}
	return "Could not reach the translation service."
}

// Classify maps any run error onto a failure class. Errors that are not
// recognised count as network failures.
func Classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	var ce *capture.Error
	switch {
	case errors.Is(err, permission.ErrDenied):
		return &Failure{Class: ClassPermission, Err: err}
	case errors.As(err, &ce):
		return &Failure{Class: ClassCapture, Err: err}
	case translate.IsMalformed(err):
		return &Failure{Class: ClassMalformed, Err: err}
	}
	return &Failure{Class: ClassNetwork, Err: err}
}

// captureFailure classifies an error raised by a capture source.
func captureFailure(err error) *Failure {
	if errors.Is(err, permission.ErrDenied) {
		return &Failure{Class: ClassPermission, Err: err}
	}
	return &Failure{Class: ClassCapture, Err: err}
}
