// Package webcam captures photos and preview frames from a local camera
// through OpenCV (gocv).
package webcam

import "github.com/teslashibe/go-phototranslate/pkg/capture"

// Config holds all camera configuration parameters.
type Config struct {
	// === Devices ===
	BackDevice  int `json:"back_device"`  // Device index used for the back camera
	FrontDevice int `json:"front_device"` // Device index used for the front camera; -1 if absent

	// === Resolution ===
	Width  int `json:"width"`  // Frame width in pixels
	Height int `json:"height"` // Frame height in pixels

	// === Shutter ===
	// ShutterQuality is the [0,1] JPEG quality of translated shots.
	// Kept low: text survives and uploads stay small.
	ShutterQuality float64 `json:"shutter_quality"`

	// === Preview ===
	PreviewFPS     int `json:"preview_fps"`     // Live preview rate, 0 disables the preview
	PreviewQuality int `json:"preview_quality"` // Preview JPEG quality 1-100
}

// Limits for validation.
const (
	MaxWidth      = 4096
	MaxHeight     = 2160
	MaxPreviewFPS = 30
)

// DefaultConfig returns the configuration used by the camera app.
func DefaultConfig() Config {
	return Config{
		BackDevice:     0,
		FrontDevice:    -1,
		Width:          1280,
		Height:         720,
		ShutterQuality: capture.ShutterQuality,
		PreviewFPS:     10,
		PreviewQuality: 60,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.BackDevice < 0 {
		errors = append(errors, "back_device must be >= 0")
	}
	if c.FrontDevice == c.BackDevice {
		errors = append(errors, "front_device must differ from back_device")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.ShutterQuality <= 0 || c.ShutterQuality > 1 {
		errors = append(errors, "shutter_quality must be in (0, 1]")
	}
	if c.PreviewFPS < 0 || c.PreviewFPS > MaxPreviewFPS {
		errors = append(errors, "preview_fps must be between 0 and 30")
	}
	if c.PreviewQuality < 1 || c.PreviewQuality > 100 {
		errors = append(errors, "preview_quality must be between 1 and 100")
	}

	return errors
}

// HasFront reports whether a front camera is configured.
func (c *Config) HasFront() bool {
	return c.FrontDevice >= 0
}
