// Package config provides environment helpers for phototranslate commands.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values shared by the commands.
const (
	DefaultWebPort          = "8080"
	DefaultServerPort       = "8000"
	DefaultFallbackLanguage = "en"
	DefaultTranslateTimeout = 5 * time.Second
)

// String returns the trimmed value of key, or def when unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an int, or def when unset or unparsable.
func Int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Duration returns key parsed with time.ParseDuration, or def.
// A bare integer is read as milliseconds ("5000" == 5s).
func Duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// TranslatorURL returns the translation endpoint base URL from TRANSLATOR_URL.
func TranslatorURL() string {
	return strings.TrimRight(String("TRANSLATOR_URL", ""), "/")
}

// Port returns the listen port, preferring the platform PORT variable.
func Port(def string) string {
	return String("PORT", def)
}
