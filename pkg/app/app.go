package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/flow"
	"github.com/teslashibe/go-phototranslate/pkg/locale"
	"github.com/teslashibe/go-phototranslate/pkg/permission"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
	"github.com/teslashibe/go-phototranslate/pkg/web"
)

// ErrNoCamera is returned by the shutter when no camera was opened.
var ErrNoCamera = errors.New("app: no camera")

// Camera is the live camera the app drives: a shutter source with a
// pausable preview and an optional second device.
type Camera interface {
	capture.Source
	Pause()
	Resume()
	Facing() string
	SwitchFacing() (string, error)
	RunPreview(ctx context.Context, fn func(jpeg []byte)) error
	Close() error
}

// CameraOpener opens the camera described by cfg.
type CameraOpener func(cfg Config, logger *slog.Logger) (Camera, error)

// Option configures an App.
type Option func(*App)

// WithCameraOpener sets how the camera is opened. Without one the app
// runs gallery-only.
func WithCameraOpener(fn CameraOpener) Option {
	return func(a *App) { a.openCamera = fn }
}

// WithGate replaces the device permission gate.
func WithGate(g permission.Gate) Option {
	return func(a *App) { a.gate = g }
}

// WithTranslator replaces the HTTP translation client.
func WithTranslator(t translate.Translator) Option {
	return func(a *App) { a.translator = t }
}

// WithListener serves the web UI on ln instead of WebPort.
func WithListener(ln net.Listener) Option {
	return func(a *App) { a.listener = ln }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithOutput sets where startup progress is printed.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// App is the phototranslate application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger
	out    io.Writer

	openCamera CameraOpener
	gate       permission.Gate
	listener   net.Listener

	// Components
	permission permission.Result
	camera     Camera
	translator translate.Translator
	client     *translate.Client
	controller *flow.Controller
	webServer  *web.Server

	shutdownOnce sync.Once
}

// New creates a new application with the given configuration.
func New(cfg Config, opts ...Option) (*App, error) {
	// Apply environment overrides
	cfg.LoadEnvConfig()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.gate == nil {
		a.gate = a.deviceGate()
	}
	return a, nil
}

func (a *App) deviceGate() permission.Gate {
	g := &permission.DeviceGate{Logger: a.logger}
	if a.config.CheckDevice && a.openCamera != nil {
		g.CameraPath = permission.CameraDevicePath(a.config.BackDevice)
	}
	if a.config.Gallery {
		g.LibraryDir = a.config.GalleryDir
	}
	return g
}

// Init checks permissions and initializes all components.
// Call this after New() and before Run(). A denied permission is not an
// error: the UI is still served and shows the denial.
func (a *App) Init(ctx context.Context) error {
	fmt.Fprintln(a.out, "📷 phototranslate")
	fmt.Fprintln(a.out, "=================")

	a.webServer = web.NewServer(web.Config{
		Port:           a.config.WebPort,
		GalleryEnabled: a.config.Gallery,
		CanSwitch:      a.config.HasFront() && a.openCamera != nil,
		Logger:         a.logger,
	})

	fmt.Fprint(a.out, "🔐 Checking permissions... ")
	a.permission = a.gate.Check(ctx)
	if a.permission.Overall() == permission.Unknown {
		fmt.Fprintln(a.out, "❌")
		return fmt.Errorf("permission check incomplete: %v", a.permission.Err)
	}
	if !a.permission.Granted() {
		fmt.Fprintf(a.out, "❌ %s\n", permission.DeniedMessage)
		a.logger.Warn("permission denied", "error", a.permission.Error())
		a.webServer.SetPermission(permission.Denied)
		return nil
	}
	fmt.Fprintln(a.out, "✅")

	if a.translator == nil {
		client, err := translate.NewClient(
			translate.WithBaseURL(a.config.TranslatorURL),
			translate.WithTimeout(a.config.Timeout),
			translate.WithLogger(a.logger),
		)
		if err != nil {
			return fmt.Errorf("translator: %w", err)
		}
		a.client = client
		a.translator = client
	}

	if a.openCamera != nil {
		fmt.Fprint(a.out, "📹 Opening camera... ")
		cam, err := a.openCamera(a.config, a.logger)
		if err != nil {
			return fmt.Errorf("camera: %w", err)
		}
		a.camera = cam
		a.webServer.SetFacing(cam.Facing())
		fmt.Fprintln(a.out, "✅")
	}

	resolver := &locale.Resolver{Locale: a.config.Locale, Fallback: a.config.Fallback}
	opts := []flow.Option{
		flow.WithLanguage(resolver.Code),
		flow.WithLogger(a.logger),
		flow.WithObserver(func(_, to flow.State) { a.webServer.SetFlowState(to.String()) }),
	}
	if a.camera != nil {
		opts = append(opts, flow.WithPreview(a.camera))
	}
	a.controller = flow.NewController(a.translator, a.webServer, opts...)

	if a.camera != nil {
		a.webServer.OnShutter = a.shutter
		if a.config.HasFront() {
			a.webServer.OnSwitch = a.switchCamera
		}
	}
	if a.config.Gallery {
		a.webServer.OnPick = a.pick
	}
	a.webServer.SetPermission(permission.Granted)

	a.logger.Info("initialized",
		"translator", a.config.TranslatorURL,
		"language", resolver.Code(),
		"camera", a.camera != nil,
		"gallery", a.config.Gallery,
	)
	return nil
}

func (a *App) shutter() error {
	if a.camera == nil {
		return ErrNoCamera
	}
	return a.controller.Trigger(a.camera)
}

func (a *App) pick(data []byte) error {
	return a.controller.Trigger(capture.FromBytes(data))
}

func (a *App) switchCamera() (string, error) {
	if a.camera == nil {
		return "", ErrNoCamera
	}
	if a.controller.Busy() {
		return a.camera.Facing(), flow.ErrBusy
	}
	facing, err := a.camera.SwitchFacing()
	if err != nil {
		return facing, err
	}
	a.webServer.SetFacing(facing)
	return facing, nil
}

// Run serves the UI and streams the camera preview.
// Blocks until context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.webServer == nil {
		return errors.New("app: Run called before Init")
	}

	if a.camera != nil {
		go func() {
			if err := a.camera.RunPreview(ctx, a.webServer.SendPreviewFrame); err != nil {
				a.logger.Warn("preview stopped", "error", err)
			}
		}()
	}

	fmt.Fprintf(a.out, "\n🌐 Open http://localhost:%s to take a photo\n", a.config.WebPort)
	fmt.Fprintln(a.out, "   (Ctrl+C to exit)")

	if a.listener != nil {
		return a.webServer.Serve(ctx, a.listener)
	}
	return a.webServer.Run(ctx)
}

// Shutdown cancels any flow in progress and releases the devices.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		fmt.Fprintln(a.out, "\n👋 Goodbye!")
		if a.controller != nil {
			if err := a.controller.Close(); err != nil {
				a.logger.Debug("controller close", "error", err)
			}
		}
		if a.camera != nil {
			if err := a.camera.Close(); err != nil {
				a.logger.Warn("camera close", "error", err)
			}
		}
		if a.client != nil {
			a.client.Close()
		}
	})
}

// Permission returns the result of the permission check made by Init.
func (a *App) Permission() permission.Result {
	return a.permission
}

// Controller returns the flow controller, nil until Init succeeds with
// permission granted.
func (a *App) Controller() *flow.Controller {
	return a.controller
}

// Web returns the UI server, nil until Init.
func (a *App) Web() *web.Server {
	return a.webServer
}
