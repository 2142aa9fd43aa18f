// Package permission decides whether the capture UI may be shown at all.
//
// The camera is always required. Read access to the photo library is only
// required when the gallery source is enabled. Until a gate has been
// checked the status is Unknown and nothing should be rendered.
package permission

import (
	"context"
	"errors"
	"fmt"
)

// Status is the outcome of one access check.
type Status int

const (
	Unknown Status = iota
	Granted
	Denied
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// DeniedMessage is the static text shown instead of the capture UI.
const DeniedMessage = "No access to camera"

// ErrDenied is returned when a required permission is not granted.
var ErrDenied = errors.New("permission: denied")

// Result is the combined outcome of a gate check.
type Result struct {
	Camera  Status
	Library Status // Unknown when the library is not required
	Err     error  // first failure, for logging
}

// Overall folds the result into a single status: Denied if any required
// permission is denied, Granted if the camera is granted, Unknown otherwise.
func (r Result) Overall() Status {
	if r.Camera == Denied || r.Library == Denied {
		return Denied
	}
	if r.Camera == Granted {
		return Granted
	}
	return Unknown
}

// Granted reports whether the capture UI may be shown.
func (r Result) Granted() bool {
	return r.Overall() == Granted
}

// Error returns ErrDenied wrapped with the cause, or nil when granted.
func (r Result) Error() error {
	if r.Overall() != Denied {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%w: %v", ErrDenied, r.Err)
	}
	return ErrDenied
}

// Gate checks access before any capture UI is shown.
type Gate interface {
	Check(ctx context.Context) Result
}

// Static is a Gate with a fixed answer.
type Static Result

// Check returns the fixed result.
func (s Static) Check(ctx context.Context) Result {
	return Result(s)
}

// Allow is a Static gate granting everything.
var Allow Gate = Static{Camera: Granted, Library: Granted}
