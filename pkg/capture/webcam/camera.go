package webcam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
)

// Facing names the active camera.
type Facing string

const (
	FacingBack  Facing = "back"
	FacingFront Facing = "front"
)

var (
	// ErrNoFrame is returned when the device delivers an empty frame.
	ErrNoFrame = errors.New("webcam: no frame")

	// ErrNoFrontCamera is returned by SwitchFacing without a front device.
	ErrNoFrontCamera = errors.New("webcam: no front camera configured")
)

// Camera is the shutter capture variant plus a pausable live preview.
// One device is open at a time; all reads go through mu.
type Camera struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	dev    *gocv.VideoCapture
	frame  gocv.Mat
	facing Facing
	closed bool

	paused atomic.Bool
}

// Open opens the back camera described by cfg.
func Open(cfg Config, logger *slog.Logger) (*Camera, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("webcam: invalid config: %v", errs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	dev, err := openDevice(cfg.BackDevice, cfg)
	if err != nil {
		return nil, err
	}

	return &Camera{
		cfg:    cfg,
		logger: logger.With("component", "webcam.camera"),
		dev:    dev,
		frame:  gocv.NewMat(),
		facing: FacingBack,
	}, nil
}

func openDevice(index int, cfg Config) (*gocv.VideoCapture, error) {
	dev, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, capture.WrapError(capture.KindCamera, fmt.Errorf("open device %d: %w", index, err))
	}
	if !dev.IsOpened() {
		dev.Close()
		return nil, capture.WrapError(capture.KindCamera, fmt.Errorf("device %d not opened", index))
	}
	dev.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	dev.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	return dev, nil
}

// Capture shoots one frame at the configured shutter quality.
func (c *Camera) Capture(ctx context.Context) (*capture.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, capture.WrapError(capture.KindCamera, err)
	}
	data, err := c.grab(capture.JPEGQuality(c.cfg.ShutterQuality))
	if err != nil {
		return nil, capture.WrapError(capture.KindCamera, err)
	}
	c.logger.Debug("shutter", "bytes", len(data), "facing", c.Facing())
	return capture.NewImage(data, c.cfg.ShutterQuality, capture.KindCamera), nil
}

// grab reads one frame and JPEG-encodes it at quality (1-100).
func (c *Camera) grab(quality int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, capture.ErrClosed
	}
	if ok := c.dev.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.frame, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close; keep our own copy.
	return bytes.Clone(buf.GetBytes()), nil
}

// Pause stops preview frames until Resume. Shutter captures still work.
func (c *Camera) Pause() {
	c.paused.Store(true)
}

// Resume restarts preview frames.
func (c *Camera) Resume() {
	c.paused.Store(false)
}

// Paused reports whether the preview is paused.
func (c *Camera) Paused() bool {
	return c.paused.Load()
}

// Facing returns the active camera.
func (c *Camera) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// SwitchFacing toggles between the back and front camera.
// The new device is opened before the old one is released.
func (c *Camera) SwitchFacing() (Facing, error) {
	if !c.cfg.HasFront() {
		return c.Facing(), ErrNoFrontCamera
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.facing, capture.ErrClosed
	}

	next, index := FacingFront, c.cfg.FrontDevice
	if c.facing == FacingFront {
		next, index = FacingBack, c.cfg.BackDevice
	}

	dev, err := openDevice(index, c.cfg)
	if err != nil {
		return c.facing, err
	}
	c.dev.Close()
	c.dev = dev
	c.facing = next

	c.logger.Info("camera switched", "facing", next, "device", index)
	return next, nil
}

// RunPreview delivers JPEG preview frames to fn until ctx is done.
// Frames are skipped while paused.
func (c *Camera) RunPreview(ctx context.Context, fn func(jpeg []byte)) error {
	if c.cfg.PreviewFPS == 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.PreviewFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if c.paused.Load() {
				continue
			}
			data, err := c.grab(c.cfg.PreviewQuality)
			if errors.Is(err, capture.ErrClosed) {
				return err
			}
			if err != nil {
				c.logger.Debug("preview frame dropped", "error", err)
				continue
			}
			fn(data)
		}
	}
}

// Close releases the device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.frame.Close()
	return c.dev.Close()
}

// Verify Camera implements capture.Source at compile time.
var _ capture.Source = (*Camera)(nil)
