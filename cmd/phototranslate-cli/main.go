// phototranslate-cli - the capture-and-translate flow in a terminal.
//
// Commands on stdin:
//
//	shoot          take a photo with the camera
//	pick <path>    translate an image file
//	switch         toggle back/front camera
//	quit           exit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-phototranslate/internal/config"
	"github.com/teslashibe/go-phototranslate/internal/log"
	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/capture/webcam"
	"github.com/teslashibe/go-phototranslate/pkg/flow"
	"github.com/teslashibe/go-phototranslate/pkg/locale"
	"github.com/teslashibe/go-phototranslate/pkg/permission"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	translator := flag.String("translator", config.TranslatorURL(), "Translation endpoint base URL (TRANSLATOR_URL)")
	timeout := flag.Duration("timeout", config.Duration("TRANSLATE_TIMEOUT", config.DefaultTranslateTimeout), "Translation request timeout")
	loc := flag.String("locale", config.String("PHOTOTRANSLATE_LOCALE", ""), "Locale override, e.g. fr-CA")
	device := flag.Int("camera", config.Int("CAMERA_DEVICE", 0), "Camera device index, -1 for none")
	front := flag.Int("front-camera", config.Int("FRONT_CAMERA_DEVICE", -1), "Front camera device index, -1 for none")
	galleryDir := flag.String("gallery-dir", config.String("GALLERY_DIR", ""), "Restrict picks to this directory")
	flag.Parse()

	level := config.String("LOG_LEVEL", "warn")
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.L()

	if *translator == "" {
		fmt.Fprintln(os.Stderr, "Error: TRANSLATOR_URL environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gate := &permission.DeviceGate{LibraryDir: *galleryDir, Logger: logger}
	if *device >= 0 {
		gate.CameraPath = permission.CameraDevicePath(*device)
	}
	if res := gate.Check(ctx); !res.Granted() {
		fmt.Println(permission.DeniedMessage)
		os.Exit(1)
	}

	client, err := translate.NewClient(
		translate.WithBaseURL(*translator),
		translate.WithTimeout(*timeout),
		translate.WithLogger(logger),
	)
	if err != nil {
		stdlog.Fatalf("❌ Configuration error: %v", err)
	}
	defer client.Close()

	var cam *webcam.Camera
	if *device >= 0 {
		wc := webcam.DefaultConfig()
		wc.BackDevice, wc.FrontDevice = *device, *front
		wc.PreviewFPS = 0
		cam, err = webcam.Open(wc, logger)
		if err != nil {
			stdlog.Fatalf("❌ Camera: %v", err)
		}
		defer cam.Close()
	}

	lines := readLines(ctx, os.Stdin)
	term := newTerminal(os.Stdout, lines)

	resolver := &locale.Resolver{Locale: *loc, Fallback: config.String("FALLBACK_LANGUAGE", config.DefaultFallbackLanguage)}
	opts := []flow.Option{flow.WithLanguage(resolver.Code), flow.WithLogger(logger)}
	if cam != nil {
		opts = append(opts, flow.WithPreview(cam))
	}
	ctrl := flow.NewController(client, term, opts...)
	defer ctrl.Close()

	fmt.Printf("📷 phototranslate → %s (%s)\n", client.BaseURL(), resolver.Code())
	term.help()

	for {
		term.prompt()
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "":
		case "shoot", "s":
			if cam == nil {
				fmt.Println("no camera configured")
				continue
			}
			run(ctx, ctrl, cam)
		case "pick", "p":
			run(ctx, ctrl, capture.NewGallery(capture.PathPicker(strings.TrimSpace(arg)), capture.WithRoot(*galleryDir)))
		case "switch":
			if cam == nil {
				fmt.Println("no camera configured")
				continue
			}
			facing, err := cam.SwitchFacing()
			if err != nil {
				fmt.Printf("⚠️  %v\n", err)
				continue
			}
			fmt.Printf("camera: %s\n", facing)
		case "quit", "q", "exit":
			return
		default:
			term.help()
		}
	}
}

// run executes one flow. The terminal UI has already shown the outcome.
func run(ctx context.Context, ctrl *flow.Controller, src capture.Source) {
	_, err := ctrl.Run(ctx, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Debug("flow finished", "error", err)
	}
}

// readLines feeds stdin lines to a channel until EOF or ctx is done.
func readLines(ctx context.Context, f *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
