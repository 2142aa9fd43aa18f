package capture

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrCancelled is returned when the user dismisses the picker.
	ErrCancelled = errors.New("capture: cancelled")

	// ErrEmpty is returned when a source produced no bytes.
	ErrEmpty = errors.New("capture: empty image")

	// ErrNotImage is returned when the bytes are not a recognised image.
	ErrNotImage = errors.New("capture: not an image")

	// ErrTooLarge is returned when an image exceeds the configured limit.
	ErrTooLarge = errors.New("capture: image too large")

	// ErrClosed is returned when capturing from a closed device.
	ErrClosed = errors.New("capture: source closed")
)

// Error wraps a capture failure with the variant that produced it.
type Error struct {
	Source Kind
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("capture [%s]: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with source context.
func WrapError(src Kind, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Source: src, Err: err}
}

// IsCancelled reports whether err means the user backed out.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
