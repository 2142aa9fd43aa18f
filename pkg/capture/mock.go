package capture

import (
	"context"
	"sync"
)

// Mock implements Source for testing.
type Mock struct {
	// CaptureFunc is called when Capture is invoked.
	CaptureFunc func(ctx context.Context) (*Image, error)

	mu    sync.Mutex
	calls int
}

// NewMock returns a mock serving data as a camera shot.
func NewMock(data []byte) *Mock {
	return &Mock{
		CaptureFunc: func(ctx context.Context) (*Image, error) {
			return NewImage(data, ShutterQuality, KindCamera), nil
		},
	}
}

// FailingMock returns a mock whose every capture fails with err.
func FailingMock(err error) *Mock {
	return &Mock{
		CaptureFunc: func(ctx context.Context) (*Image, error) {
			return nil, WrapError(KindCamera, err)
		},
	}
}

// Capture calls CaptureFunc and records the call.
func (m *Mock) Capture(ctx context.Context) (*Image, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.CaptureFunc == nil {
		return nil, WrapError(KindCamera, ErrEmpty)
	}
	return m.CaptureFunc(ctx)
}

// Calls returns how many captures were requested.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Verify Mock implements Source at compile time.
var _ Source = (*Mock)(nil)
