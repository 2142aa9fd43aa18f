// Package locale derives the translation target language from the device locale.
package locale

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// DefaultFallback is used when neither a locale nor a fallback is available.
const DefaultFallback = "en"

// EnvOverride forces a locale regardless of the POSIX environment.
const EnvOverride = "PHOTOTRANSLATE_LOCALE"

// detectOrder lists the variables consulted by Detect, highest priority first.
var detectOrder = []string{EnvOverride, "LC_ALL", "LC_MESSAGES", "LANG"}

// LanguageCode returns the language code sent to the translation endpoint.
//
// For a locale containing a hyphen it is the substring before the first
// hyphen, case preserved ("en-US" -> "en", "FR-ca" -> "FR"). A locale
// without a hyphen is returned whole ("en" -> "en"). An empty result falls
// back to fallback, then to DefaultFallback, so the code is never empty.
func LanguageCode(locale, fallback string) string {
	locale = strings.TrimSpace(locale)
	code := locale
	if i := strings.IndexByte(locale, '-'); i >= 0 {
		code = locale[:i]
	}
	if code != "" {
		return code
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return DefaultFallback
}

// Normalize converts a POSIX or BCP 47 locale to BCP 47 form.
// "fr_FR.UTF-8" -> "fr-FR", "pt_br" -> "pt-BR", "en" -> "en".
// The language subtag is kept as written: deprecated codes such as "iw"
// or "tl" are not replaced.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return "", fmt.Errorf("locale: %q carries no language", raw)
	}
	s = strings.ReplaceAll(s, "_", "-")
	tag, err := language.Raw.Parse(s)
	if err != nil {
		return "", fmt.Errorf("locale: parse %q: %w", raw, err)
	}
	return tag.String(), nil
}

// Detect returns the device locale as a BCP 47 tag, or "" when the
// environment names none.
func Detect() string {
	return DetectFrom(os.Getenv)
}

// DetectFrom is Detect with an injectable environment lookup.
func DetectFrom(getenv func(string) string) string {
	for _, key := range detectOrder {
		v := getenv(key)
		if v == "" {
			continue
		}
		if tag, err := Normalize(v); err == nil {
			return tag
		}
	}
	return ""
}

// Resolver yields the current language code on every call. The locale is
// re-read each time so a changed device locale takes effect on the next flow.
type Resolver struct {
	// Locale, when set, is used instead of the environment.
	Locale string

	// Fallback is used when no locale is available.
	Fallback string

	getenv func(string) string
}

// Code returns the language code for the next translation request.
// A POSIX-form Locale ("fr_FR.UTF-8") is normalized like a detected one;
// a BCP 47 Locale is used as given.
func (r *Resolver) Code() string {
	loc := strings.TrimSpace(r.Locale)
	switch {
	case loc == "" && r.getenv != nil:
		loc = DetectFrom(r.getenv)
	case loc == "":
		loc = Detect()
	case isPOSIX(loc):
		if tag, err := Normalize(loc); err == nil {
			loc = tag
		}
	}
	return LanguageCode(loc, r.Fallback)
}

// isPOSIX reports whether loc uses POSIX locale syntax.
func isPOSIX(loc string) bool {
	return strings.ContainsAny(loc, "_.@")
}
