package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/teslashibe/go-phototranslate/internal/log"
	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

var jpeg = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01 reference server")

type recordingBackend struct {
	mu    sync.Mutex
	image []byte
	mime  string
	lang  string
	reply string
	err   error
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) Translate(ctx context.Context, image []byte, mime, lang string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.image = append([]byte(nil), image...)
	b.mime = mime
	b.lang = lang
	return b.reply, b.err
}

func quiet() Option { return WithLogger(log.Discard()) }

func post(t *testing.T, s *Server, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, 2000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func body(data []byte) string {
	b, _ := json.Marshal(Request{Img64: base64.StdEncoding.EncodeToString(data)})
	return string(b)
}

func TestTranslateEncodesEntities(t *testing.T) {
	be := &recordingBackend{reply: "Café!"}
	s := New(be, quiet())

	code, resp := post(t, s, "/fr", body(jpeg))
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, resp)
	}
	var text string
	if err := json.Unmarshal([]byte(resp), &text); err != nil {
		t.Fatalf("response is not a JSON string: %s", resp)
	}
	if text != "Caf&#233;!" {
		t.Errorf("text = %q", text)
	}
	if be.lang != "fr" || be.mime != "image/jpeg" || !bytes.Equal(be.image, jpeg) {
		t.Errorf("backend got lang=%q mime=%q", be.lang, be.mime)
	}
}

func TestTranslateRejectsBadRequests(t *testing.T) {
	s := New(&recordingBackend{reply: "x"}, quiet())

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"bad language", "/not-a-language", body(jpeg), http.StatusBadRequest},
		{"not json", "/en", "img64=abc", http.StatusBadRequest},
		{"empty image", "/en", `{"img64":""}`, http.StatusBadRequest},
		{"bad base64", "/en", `{"img64":"***"}`, http.StatusBadRequest},
		{"not an image", "/en", body([]byte("plain text, not a photo")), http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := post(t, s, tt.path, tt.body)
			if code != tt.want {
				t.Errorf("status = %d, want %d (%s)", code, tt.want, resp)
			}
		})
	}
}

func TestBackendFailures(t *testing.T) {
	be := &recordingBackend{err: errors.New("quota")}
	s := New(be, quiet())
	if code, _ := post(t, s, "/en", body(jpeg)); code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", code)
	}

	be.err = context.DeadlineExceeded
	if code, _ := post(t, s, "/en", body(jpeg)); code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", code)
	}
}

func TestHealthzAndRequestID(t *testing.T) {
	s := New(&recordingBackend{}, quiet())

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") != "abc" {
		t.Errorf("request id = %q", resp.Header.Get("X-Request-ID"))
	}

	resp, _ = s.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if len(resp.Header.Get("X-Request-ID")) != 36 {
		t.Errorf("generated request id = %q", resp.Header.Get("X-Request-ID"))
	}
}

// TestClientRoundTrip runs the real client against the real server.
func TestClientRoundTrip(t *testing.T) {
	be := &recordingBackend{reply: "Ça va? Ünïcödé €5"}
	s := New(be, quiet())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		<-served
	}()

	client, err := translate.NewClient(
		translate.WithBaseURL("http://"+ln.Addr().String()),
		translate.WithLogger(log.Discard()),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	img := capture.NewImage(jpeg, capture.ShutterQuality, capture.KindCamera)
	text, err := client.Translate(context.Background(), img, "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if text != be.reply {
		t.Errorf("text = %q, want %q", text, be.reply)
	}
	if !bytes.Equal(be.image, jpeg) {
		t.Error("image bytes changed between capture and server")
	}

	// Status errors surface as such on the client.
	_, err = client.Translate(context.Background(), img, "zz-not")
	if translate.KindOf(err) != translate.KindStatus {
		t.Errorf("err = %v, want status error", err)
	}
}
