// Package web serves the camera UI: capture controls, busy indicator,
// result modal and live preview, driven over HTTP and websockets.
package web

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/hub"
	"github.com/teslashibe/go-phototranslate/pkg/permission"
)

//go:embed static/index.html
var indexHTML []byte

// ResultTitle and ResultButton label the translation modal.
const (
	ResultTitle  = "Translation"
	ResultButton = "OK"
)

// UIState is everything a client needs to render the screen.
type UIState struct {
	Permission      string  `json:"permission"` // unknown, granted, denied
	Flow            string  `json:"flow"`       // idle, processing, submitting
	ControlsVisible bool    `json:"controls_visible"`
	BusyLabel       string  `json:"busy_label,omitempty"`
	Facing          string  `json:"facing,omitempty"`
	GalleryEnabled  bool    `json:"gallery_enabled"`
	CanSwitch       bool    `json:"can_switch"`
	Result          *Result `json:"result,omitempty"`
	Notice          *Notice `json:"notice,omitempty"`
}

// Result is the open translation modal.
type Result struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Button string `json:"button"`
}

// Notice is a non-blocking failure message.
type Notice struct {
	Class   string `json:"class"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// Config configures the server.
type Config struct {
	Port           string
	GalleryEnabled bool
	CanSwitch      bool
	Logger         *slog.Logger
}

// Server is the camera UI server. It implements flow.UI.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	mu     sync.RWMutex
	status permission.Status
	state  UIState
	ack    chan struct{} // closed when the open result is acknowledged

	statusHub  *hub.Hub
	previewHub *hub.Hub

	// OnShutter starts a camera flow.
	OnShutter func() error

	// OnPick starts a gallery flow with uploaded bytes.
	OnPick func(data []byte) error

	// OnSwitch toggles the camera and returns the new facing.
	OnSwitch func() (string, error)
}

// NewServer creates the server. Nothing is served until the permission
// status is set to Granted.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web.server")

	s := &Server{
		port:       cfg.Port,
		logger:     logger,
		statusHub:  hub.New("status", logger),
		previewHub: hub.New("preview", logger),
		state: UIState{
			Permission:     permission.Unknown.String(),
			Flow:           "idle",
			GalleryEnabled: cfg.GalleryEnabled,
			CanSwitch:      cfg.CanSwitch,
		},
	}

	app := fiber.New(fiber.Config{
		AppName:               "phototranslate",
		DisableStartupMessage: true,
		BodyLimit:             capture.DefaultMaxBytes + 1<<20,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api", s.requireGranted)
	api.Get("/status", s.handleStatus)
	api.Post("/shutter", s.handleShutter)
	api.Post("/gallery", s.handleGallery)
	api.Post("/camera/switch", s.handleSwitch)
	api.Post("/result/ack", s.handleAck)

	// WebSocket upgrade middleware
	app.Use("/ws", s.requireGranted, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app
	return s
}

// App returns the fiber app, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured port until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. The hubs run for as long.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.statusHub.Run(ctx)
	go s.previewHub.Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- s.app.Listener(ln) }()

	s.logger.Info("web UI listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.releaseResult()
	if err := s.app.Shutdown(); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// SetPermission records the gate outcome and broadcasts it.
// Routes see the new status before any client is told about it.
func (s *Server) SetPermission(st permission.Status) {
	s.update(func(u *UIState) {
		s.status = st
		u.Permission = st.String()
		u.ControlsVisible = st == permission.Granted
	})
}

// SetFlowState records the flow state. It is a flow.Observer body.
func (s *Server) SetFlowState(state string) {
	s.update(func(u *UIState) { u.Flow = state })
}

// SetFacing records the active camera.
func (s *Server) SetFacing(facing string) {
	s.update(func(u *UIState) { u.Facing = facing })
}

// SendPreviewFrame broadcasts a JPEG preview frame.
func (s *Server) SendPreviewFrame(jpeg []byte) {
	s.previewHub.BroadcastBinary(jpeg)
}

// State returns a copy of the UI state.
func (s *Server) State() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Server) snapshot() UIState {
	st := s.state
	if st.Result != nil {
		r := *st.Result
		st.Result = &r
	}
	if st.Notice != nil {
		n := *st.Notice
		st.Notice = &n
	}
	return st
}

// update mutates the state and broadcasts the new snapshot.
func (s *Server) update(fn func(*UIState)) {
	s.mu.Lock()
	fn(&s.state)
	st := s.snapshot()
	s.mu.Unlock()

	if err := s.statusHub.BroadcastEvent("state", st); err != nil {
		s.logger.Error("broadcast state", "error", err)
	}
}

func (s *Server) permissionStatus() permission.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
