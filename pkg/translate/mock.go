package translate

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
)

// Mock implements Translator for testing.
type Mock struct {
	// TranslateFunc is called when Translate is invoked.
	TranslateFunc func(ctx context.Context, img *capture.Image, lang string) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Translate invocation.
type MockCall struct {
	Lang  string
	Image *capture.Image
	Time  time.Time
}

// NewMock returns a mock that answers every request with text.
func NewMock(text string) *Mock {
	return &Mock{
		TranslateFunc: func(ctx context.Context, img *capture.Image, lang string) (string, error) {
			return text, nil
		},
	}
}

// FailingMock returns a mock whose every request fails with err.
func FailingMock(err error) *Mock {
	return &Mock{
		TranslateFunc: func(ctx context.Context, img *capture.Image, lang string) (string, error) {
			return "", err
		},
	}
}

// Translate calls TranslateFunc and records the call.
func (m *Mock) Translate(ctx context.Context, img *capture.Image, lang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Lang: lang, Image: img, Time: time.Now()})
	m.mu.Unlock()

	if m.TranslateFunc == nil {
		return "", newError(KindNetwork, "send", ErrNoBaseURL)
	}
	return m.TranslateFunc(ctx, img, lang)
}

// Calls returns a copy of the recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// Verify Mock implements Translator at compile time.
var _ Translator = (*Mock)(nil)
