// translator-server - reference translation endpoint.
//
// POST /{lang} with {"img64": "<base64 image>"} answers with a JSON string
// whose non-ASCII characters are escaped as &#D; references. Translation
// is done by Gemini (GEMINI_API_KEY), or by a local echo backend with -echo.
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-phototranslate/internal/config"
	"github.com/teslashibe/go-phototranslate/internal/log"
	"github.com/teslashibe/go-phototranslate/pkg/server"
	"github.com/teslashibe/go-phototranslate/pkg/server/gemini"
)

func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	port := flag.String("port", config.Port(config.DefaultServerPort), "Listen port")
	model := flag.String("model", config.String("GEMINI_MODEL", gemini.DefaultModel), "Gemini model")
	timeout := flag.Duration("timeout", server.DefaultConfig().BackendTimeout, "Backend call timeout")
	echo := flag.Bool("echo", false, "Answer with image metadata instead of calling Gemini")
	flag.Parse()

	level := config.String("LOG_LEVEL", "info")
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.L()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var backend server.Backend
	if *echo {
		backend = server.BackendFunc(func(ctx context.Context, image []byte, mime, lang string) (string, error) {
			return fmt.Sprintf("[%s] %s, %d bytes", lang, mime, len(image)), nil
		})
	} else {
		g, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"), *model, logger)
		if err != nil {
			stdlog.Fatalf("❌ Gemini: %v (set GEMINI_API_KEY or use -echo)", err)
		}
		defer g.Close()
		backend = g
	}

	srv := server.New(backend,
		server.WithBackendTimeout(*timeout),
		server.WithLogger(logger),
	)

	fmt.Printf("🌍 translator-server (%s) on :%s\n", backend.Name(), *port)
	if err := srv.Run(ctx, ":"+*port); err != nil {
		stdlog.Fatalf("❌ Runtime error: %v", err)
	}
}
