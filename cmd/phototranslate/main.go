// phototranslate - point the camera at text, get it back in your language.
// Serves the camera UI in a browser and sends shots to TRANSLATOR_URL.
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-phototranslate/internal/config"
	"github.com/teslashibe/go-phototranslate/internal/log"
	"github.com/teslashibe/go-phototranslate/pkg/app"
	"github.com/teslashibe/go-phototranslate/pkg/capture/webcam"
)

func main() {
	cfg, noCamera := parseFlags()

	level := config.String("LOG_LEVEL", "info")
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	opts := []app.Option{app.WithLogger(log.L())}
	if !noCamera {
		opts = append(opts, app.WithCameraOpener(openWebcam))
	}

	a, err := app.New(cfg, opts...)
	if err != nil {
		stdlog.Fatalf("❌ Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Init(ctx); err != nil {
		stdlog.Fatalf("❌ Initialization failed: %v", err)
	}
	defer a.Shutdown()

	if err := a.Run(ctx); err != nil {
		stdlog.Fatalf("❌ Runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() (app.Config, bool) {
	cfg := app.DefaultConfig()

	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.StringVar(&cfg.TranslatorURL, "translator", config.TranslatorURL(), "Translation endpoint base URL (TRANSLATOR_URL)")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Translation request timeout")
	flag.StringVar(&cfg.Locale, "locale", "", "Locale override, e.g. fr-CA (default: device locale)")
	flag.IntVar(&cfg.BackDevice, "camera", cfg.BackDevice, "Back camera device index")
	flag.IntVar(&cfg.FrontDevice, "front-camera", cfg.FrontDevice, "Front camera device index, -1 for none")
	flag.StringVar(&cfg.CameraPreset, "preset", cfg.CameraPreset, "Camera preset: "+strings.Join(webcam.PresetNames(), ", "))
	flag.StringVar(&cfg.GalleryDir, "gallery-dir", "", "Directory that must be readable for gallery picks")
	flag.BoolVar(&cfg.Gallery, "gallery", cfg.Gallery, "Allow picking images from the gallery")
	flag.StringVar(&cfg.WebPort, "port", cfg.WebPort, "Web UI port")
	noCamera := flag.Bool("no-camera", false, "Run gallery-only without opening a camera")
	flag.Parse()

	return cfg, *noCamera
}

// webcamAdapter exposes the webcam facing as a plain string.
type webcamAdapter struct {
	*webcam.Camera
}

func (w webcamAdapter) Facing() string {
	return string(w.Camera.Facing())
}

func (w webcamAdapter) SwitchFacing() (string, error) {
	f, err := w.Camera.SwitchFacing()
	return string(f), err
}

func openWebcam(cfg app.Config, logger *slog.Logger) (app.Camera, error) {
	preset := webcam.GetPreset(cfg.CameraPreset)
	if preset == nil {
		return nil, fmt.Errorf("unknown camera preset %q (want one of %s)",
			cfg.CameraPreset, strings.Join(webcam.PresetNames(), ", "))
	}
	wc := *preset
	wc.BackDevice = cfg.BackDevice
	wc.FrontDevice = cfg.FrontDevice

	cam, err := webcam.Open(wc, logger)
	if err != nil {
		return nil, err
	}
	return webcamAdapter{cam}, nil
}
