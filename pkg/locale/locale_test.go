package locale

import (
	"strings"
	"testing"
)

func TestLanguageCodeHyphenated(t *testing.T) {
	for _, loc := range []string{"en-US", "fr-FR", "FR-ca", "zh-Hant-TW", "pt-BR", "x-y-z"} {
		want := loc[:strings.IndexByte(loc, '-')]
		if got := LanguageCode(loc, "de"); got != want {
			t.Errorf("LanguageCode(%q) = %q, want %q", loc, got, want)
		}
	}
}

func TestLanguageCodeFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		fallback string
		want     string
	}{
		{"bare locale used whole", "en", "de", "en"},
		{"bare posix-ish used whole", "fr_FR", "de", "fr_FR"},
		{"empty uses fallback", "", "de", "de"},
		{"leading hyphen uses fallback", "-US", "de", "de"},
		{"nothing uses default", "", "", DefaultFallback},
		{"whitespace uses default", "  ", " ", DefaultFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LanguageCode(tt.locale, tt.fallback); got != tt.want {
				t.Errorf("LanguageCode(%q, %q) = %q, want %q", tt.locale, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fr_FR.UTF-8", "fr-FR"},
		{"en_US", "en-US"},
		{"pt_br", "pt-BR"},
		{"de", "de"},
		{"sr_RS@latin", "sr-RS"},
		{"es-MX", "es-MX"},
		{"iw_IL", "iw-IL"},
		{"tl_PH.UTF-8", "tl-PH"},
		{"in_ID", "in-ID"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil {
			t.Errorf("Normalize(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	for _, in := range []string{"", "C", "POSIX", "C.UTF-8", "!!"} {
		if _, err := Normalize(in); err == nil {
			t.Errorf("Normalize(%q) should fail", in)
		}
	}
}

func TestDetectFromOrder(t *testing.T) {
	env := map[string]string{
		"LC_ALL": "C",
		"LANG":   "fr_FR.UTF-8",
	}
	getenv := func(k string) string { return env[k] }
	if got := DetectFrom(getenv); got != "fr-FR" {
		t.Errorf("DetectFrom = %q, want fr-FR (C must be skipped)", got)
	}

	env[EnvOverride] = "ja-JP"
	if got := DetectFrom(getenv); got != "ja-JP" {
		t.Errorf("DetectFrom = %q, want override ja-JP", got)
	}
}

func TestDetectFromEmpty(t *testing.T) {
	if got := DetectFrom(func(string) string { return "" }); got != "" {
		t.Errorf("DetectFrom = %q, want empty", got)
	}
}

func TestResolver(t *testing.T) {
	r := &Resolver{Locale: "es-ES", Fallback: "en"}
	if got := r.Code(); got != "es" {
		t.Errorf("Code = %q, want es", got)
	}

	for loc, want := range map[string]string{
		"fr_FR.UTF-8": "fr",
		"tl_PH.UTF-8": "tl",
		"FR-ca":       "FR",
		"C":           "C",
	} {
		r = &Resolver{Locale: loc, Fallback: "en"}
		if got := r.Code(); got != want {
			t.Errorf("Code(Locale=%q) = %q, want %q", loc, got, want)
		}
	}

	r = &Resolver{Fallback: "it", getenv: func(string) string { return "" }}
	if got := r.Code(); got != "it" {
		t.Errorf("Code = %q, want fallback it", got)
	}

	r = &Resolver{getenv: func(k string) string {
		if k == "LANG" {
			return "de_AT.UTF-8"
		}
		return ""
	}}
	if got := r.Code(); got != "de" {
		t.Errorf("Code = %q, want de", got)
	}
}

func TestResolverReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvOverride, "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "iw_IL.UTF-8")

	if got := Detect(); got != "iw-IL" {
		t.Errorf("Detect = %q, want iw-IL", got)
	}
	if got := (&Resolver{}).Code(); got != "iw" {
		t.Errorf("Code = %q, want iw", got)
	}
}
