package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teslashibe/go-phototranslate/internal/log"
	"github.com/teslashibe/go-phototranslate/pkg/capture"
)

var shot = capture.NewImage([]byte("\xff\xd8\xff\xe0 test jpeg bytes"), capture.ShutterQuality, capture.KindCamera)

func quiet() Option {
	return WithLogger(log.Discard())
}

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(append([]Option{WithBaseURL(url), quiet()}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestTranslateWireContract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/fr" {
			t.Errorf("path = %s, want /api/fr", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("body not JSON: %v", err)
		}
		if len(body) != 1 || body["img64"] != shot.Base64 {
			t.Errorf("body = %s, want only img64 with the captured payload", raw)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`"Bonjour&#33;"`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/api/")
	got, err := c.Translate(context.Background(), shot, "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Bonjour!" {
		t.Errorf("got %q, want %q", got, "Bonjour!")
	}
}

func TestTranslateDecodesEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"&#72;&#105;"`))
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).Translate(context.Background(), shot, "en")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hi" {
		t.Errorf("got %q, want Hi", got)
	}
}

func TestTranslateLeavesUnsupportedReferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"Caf&eacute; &#x21; &#8364;"`))
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).Translate(context.Background(), shot, "fr")
	if err != nil {
		t.Fatal(err)
	}
	if want := "Caf&eacute; &#x21; &#8364;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTranslateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	// The HTTP client has no timeout of its own; only the context deadline applies.
	c := newTestClient(t, server.URL, WithTimeout(50*time.Millisecond), WithHTTPClient(&http.Client{}))

	start := time.Now()
	_, err := c.Translate(context.Background(), shot, "en")
	if !IsTimeout(err) {
		t.Fatalf("err = %v, want timeout", err)
	}
	if !IsNetwork(err) {
		t.Error("timeouts count as network failures")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestTranslateCanceled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(t, server.URL).Translate(ctx, shot, "en")
	if KindOf(err) != KindCanceled {
		t.Fatalf("err = %v, want canceled", err)
	}
}

func TestTranslateMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `Bonjour`},
		{"null", `null`},
		{"number", `42`},
		{"object", `{"text":"Bonjour"}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Translate(context.Background(), shot, "en")
			if !IsMalformed(err) {
				t.Errorf("err = %v, want malformed", err)
			}
		})
	}
}

func TestTranslateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"backend down"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Translate(context.Background(), shot, "en")
	if KindOf(err) != KindStatus {
		t.Fatalf("err = %v, want status error", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError in chain, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "backend down" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if !apiErr.IsServerError() {
		t.Error("502 should be a server error")
	}
}

func TestTranslateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Translate(context.Background(), shot, "en")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError in chain, got %v", err)
	}
	if !apiErr.IsRateLimited() || !apiErr.IsClientError() || apiErr.IsServerError() {
		t.Errorf("429 classified wrong: %+v", apiErr)
	}
	if apiErr.Message != "slow down" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestTranslateConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Translate(context.Background(), shot, "en")
	if KindOf(err) != KindNetwork {
		t.Fatalf("err = %v, want network error", err)
	}
}

func TestTranslateInvalidInput(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")

	if _, err := c.Translate(context.Background(), nil, "en"); !errors.Is(err, ErrNoImage) {
		t.Errorf("nil image: err = %v", err)
	}
	if _, err := c.Translate(context.Background(), shot, ""); !errors.Is(err, ErrNoLanguage) {
		t.Errorf("empty lang: err = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{"missing url", nil, ErrNoBaseURL},
		{"relative url", []Option{WithBaseURL("translator/api")}, ErrInvalidBaseURL},
		{"bad scheme", []Option{WithBaseURL("ftp://example.com")}, ErrInvalidBaseURL},
		{"zero timeout", []Option{WithBaseURL("https://example.com"), WithTimeout(0)}, ErrInvalidTimeout},
		{"ok", []Option{WithBaseURL("https://example.com/")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEndpointEscapesLanguage(t *testing.T) {
	c := newTestClient(t, "https://example.com/v1/")
	if got := c.Endpoint("en"); got != "https://example.com/v1/en" {
		t.Errorf("Endpoint = %q", got)
	}
	if got := c.Endpoint("a/b"); got != "https://example.com/v1/a%2Fb" {
		t.Errorf("Endpoint = %q", got)
	}
}

func TestMockRecordsCalls(t *testing.T) {
	m := NewMock("hello")
	got, err := m.Translate(context.Background(), shot, "de")
	if err != nil || got != "hello" {
		t.Fatalf("got %q, %v", got, err)
	}
	calls := m.Calls()
	if len(calls) != 1 || calls[0].Lang != "de" || calls[0].Image != shot {
		t.Errorf("calls = %+v", calls)
	}
	m.Reset()
	if len(m.Calls()) != 0 {
		t.Error("Reset did not clear calls")
	}
}
