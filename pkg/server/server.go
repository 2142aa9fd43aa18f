// Package server is a reference implementation of the translation
// endpoint the clients talk to:
//
//	POST /{lang}  {"img64": "<base64 image>"}  ->  200 "translated text"
//
// Non-ASCII characters up to code point 999 in the answer are sent as
// "&#D;" references, which every client decodes.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/entity"
)

// Backend extracts the text in an image and translates it into lang.
type Backend interface {
	Name() string
	Translate(ctx context.Context, image []byte, mime, lang string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, image []byte, mime, lang string) (string, error)

// Name returns "func".
func (f BackendFunc) Name() string { return "func" }

// Translate calls f.
func (f BackendFunc) Translate(ctx context.Context, image []byte, mime, lang string) (string, error) {
	return f(ctx, image, mime, lang)
}

// Request is the JSON body of a translation request.
type Request struct {
	Img64 string `json:"img64"`
}

// Config configures the server.
type Config struct {
	// BackendTimeout bounds one backend call.
	BackendTimeout time.Duration

	// MaxImageBytes caps a decoded image.
	MaxImageBytes int

	Logger *slog.Logger
}

// Option is a functional option for configuring the server.
type Option func(*Config)

// WithBackendTimeout sets the backend timeout.
func WithBackendTimeout(d time.Duration) Option {
	return func(c *Config) { c.BackendTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns the defaults.
func DefaultConfig() *Config {
	return &Config{
		BackendTimeout: 30 * time.Second,
		MaxImageBytes:  capture.DefaultMaxBytes,
		Logger:         slog.Default(),
	}
}

// Server serves the translation endpoint.
type Server struct {
	app     *fiber.App
	backend Backend
	cfg     *Config
	logger  *slog.Logger
}

// New creates the server.
func New(backend Backend, opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		backend: backend,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "server", "backend", backend.Name()),
	}

	app := fiber.New(fiber.Config{
		AppName:               "translator",
		DisableStartupMessage: true,
		// base64 grows the payload by a third
		BodyLimit: cfg.MaxImageBytes/3*4 + 1<<10,
	})
	app.Use(recover.New())
	app.Use(s.requestID)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "backend": backend.Name()})
	})
	app.Post("/:lang", s.handleTranslate)

	s.app = app
	return s
}

// App returns the fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Listener(ln) }()

	s.logger.Info("translator listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return err
	}
	return <-errc
}

// Run listens on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set("X-Request-ID", id)
	return c.Next()
}

func fail(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func (s *Server) handleTranslate(c *fiber.Ctx) error {
	start := time.Now()
	logger := s.logger.With("request_id", c.Locals("request_id"))

	base, err := language.ParseBase(c.Params("lang"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "unknown language "+c.Params("lang"))
	}
	lang := base.String()

	var req Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, fiber.StatusBadRequest, "body must be {\"img64\": \"...\"}")
	}
	if req.Img64 == "" {
		return fail(c, fiber.StatusBadRequest, "img64 is empty")
	}

	image, err := base64.StdEncoding.DecodeString(req.Img64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "img64 is not valid base64")
	}
	if len(image) > s.cfg.MaxImageBytes {
		return fail(c, fiber.StatusRequestEntityTooLarge, capture.ErrTooLarge.Error())
	}
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return fail(c, fiber.StatusUnsupportedMediaType, "img64 is not an image")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.BackendTimeout)
	defer cancel()

	text, err := s.backend.Translate(ctx, image, mime, lang)
	if err != nil {
		logger.Error("backend failed", "lang", lang, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fail(c, fiber.StatusGatewayTimeout, "backend timed out")
		}
		return fail(c, fiber.StatusBadGateway, "backend failed")
	}

	logger.Info("translated",
		"lang", lang,
		"image_bytes", len(image),
		"mime", mime,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return c.JSON(entity.EncodeNumeric(text))
}
