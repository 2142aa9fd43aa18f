// phototranslate-bot - Telegram front end: send a photo, get the
// translation back in your Telegram language.
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teslashibe/go-phototranslate/internal/config"
	"github.com/teslashibe/go-phototranslate/internal/log"
	"github.com/teslashibe/go-phototranslate/pkg/telegram"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	translator := flag.String("translator", config.TranslatorURL(), "Translation endpoint base URL (TRANSLATOR_URL)")
	timeout := flag.Duration("timeout", config.Duration("TRANSLATE_TIMEOUT", config.DefaultTranslateTimeout), "Translation request timeout")
	fallback := flag.String("fallback", config.String("FALLBACK_LANGUAGE", config.DefaultFallbackLanguage), "Language for users without a language code")
	flag.Parse()

	level := config.String("LOG_LEVEL", "info")
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.L()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: TELEGRAM_BOT_TOKEN environment variable is required")
		os.Exit(1)
	}
	if *translator == "" {
		fmt.Fprintln(os.Stderr, "Error: TRANSLATOR_URL environment variable is required")
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

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		stdlog.Fatalf("❌ Telegram: %v", err)
	}
	api.Debug = *debug
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	bot := telegram.New(api, client,
		telegram.WithFallback(*fallback),
		telegram.WithLogger(logger),
	)
	defer bot.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("🤖 @%s translating via %s\n", api.Self.UserName, client.BaseURL())
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		stdlog.Fatalf("❌ Runtime error: %v", err)
	}
}
