// Package app wires the camera, the translation client, the flow
// controller and the web UI into the phototranslate application.
package app

import (
	"time"

	"github.com/teslashibe/go-phototranslate/internal/config"
)

// Config holds all configuration for the application.
// Flag parsing is done in cmd/phototranslate/main.go; this struct is data only.
type Config struct {
	// Debug enables debug logging.
	Debug bool

	// TranslatorURL is the translation endpoint base URL.
	TranslatorURL string

	// Timeout bounds one translation request.
	Timeout time.Duration

	// Locale overrides the device locale; Fallback is used when there is none.
	Locale   string
	Fallback string

	// Camera devices. FrontDevice is -1 when there is no front camera.
	BackDevice  int
	FrontDevice int

	// CameraPreset names a camera preset; the camera opener resolves it.
	CameraPreset string

	// CheckDevice requires read/write access to the camera device node.
	CheckDevice bool

	// Gallery enables image uploads. GalleryDir, when set, is checked by
	// the permission gate and must be a readable directory.
	Gallery    bool
	GalleryDir string

	// WebPort is the UI listen port.
	WebPort string
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:      config.DefaultTranslateTimeout,
		Fallback:     config.DefaultFallbackLanguage,
		BackDevice:   0,
		FrontDevice:  -1,
		CameraPreset: "default",
		CheckDevice:  true,
		Gallery:      true,
		WebPort:      config.DefaultWebPort,
	}
}

// LoadEnvConfig applies environment overrides. Call it after flag parsing.
func (c *Config) LoadEnvConfig() {
	if u := config.TranslatorURL(); u != "" {
		c.TranslatorURL = u
	}
	c.Timeout = config.Duration("TRANSLATE_TIMEOUT", c.Timeout)
	c.Locale = config.String("PHOTOTRANSLATE_LOCALE", c.Locale)
	c.Fallback = config.String("FALLBACK_LANGUAGE", c.Fallback)
	c.BackDevice = config.Int("CAMERA_DEVICE", c.BackDevice)
	c.FrontDevice = config.Int("FRONT_CAMERA_DEVICE", c.FrontDevice)
	c.CameraPreset = config.String("CAMERA_PRESET", c.CameraPreset)
	c.GalleryDir = config.String("GALLERY_DIR", c.GalleryDir)
	c.WebPort = config.String("WEB_PORT", c.WebPort)
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.TranslatorURL == "" {
		return &ConfigError{Field: "TranslatorURL", Message: "TRANSLATOR_URL environment variable is required"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "Timeout", Message: "translate timeout must be positive"}
	}
	if c.BackDevice < 0 {
		return &ConfigError{Field: "BackDevice", Message: "camera device must be >= 0"}
	}
	if c.FrontDevice == c.BackDevice {
		return &ConfigError{Field: "FrontDevice", Message: "front camera must differ from back camera"}
	}
	if c.WebPort == "" {
		return &ConfigError{Field: "WebPort", Message: "web port is required"}
	}
	return nil
}

// HasFront reports whether a front camera is configured.
func (c *Config) HasFront() bool {
	return c.FrontDevice >= 0
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
