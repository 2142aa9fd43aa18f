// Package telegram is a chat front end: a photo sent to the bot is the
// gallery pick, the reply is the translation.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teslashibe/go-phototranslate/internal/httpc"
	"github.com/teslashibe/go-phototranslate/pkg/capture"
	"github.com/teslashibe/go-phototranslate/pkg/flow"
	"github.com/teslashibe/go-phototranslate/pkg/locale"
	"github.com/teslashibe/go-phototranslate/pkg/translate"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Replies sent by the bot.
const (
	TextStart = "Send me a photo of some text and I will translate it into your language."
	TextBusy  = "Still working on your previous photo, please wait."
	TextNoImg = "Please send a photo or an image file."
)

// Config configures the bot.
type Config struct {
	// Fallback is the language used when a user has no language code.
	Fallback string

	// HTTPClient downloads photos from Telegram.
	HTTPClient *http.Client

	// MaxBytes caps a downloaded photo.
	MaxBytes int64

	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int

	Logger *slog.Logger
}

// Option is a functional option for configuring the bot.
type Option func(*Config)

// WithFallback sets the fallback language.
func WithFallback(lang string) Option {
	return func(c *Config) { c.Fallback = lang }
}

// WithHTTPClient sets the download client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Config) { c.HTTPClient = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns the defaults.
func DefaultConfig() *Config {
	return &Config{
		Fallback:    locale.DefaultFallback,
		HTTPClient:  httpc.Client,
		MaxBytes:    capture.DefaultMaxBytes,
		PollTimeout: 30,
		Logger:      slog.Default(),
	}
}

// Bot runs at most one flow per chat. A chat is tracked only while its
// flow is in flight.
type Bot struct {
	api        API
	translator translate.Translator
	cfg        *Config
	logger     *slog.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	active map[int64]*chat
	closed bool
}

// New creates a bot.
func New(api API, t translate.Translator, opts ...Option) *Bot {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	base, stop := context.WithCancel(context.Background())
	return &Bot{
		api:        api,
		translator: t,
		cfg:        cfg,
		logger:     cfg.Logger.With("component", "telegram.bot"),
		base:       base,
		stop:       stop,
		active:     make(map[int64]*chat),
	}
}

// Run long-polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	offset := 0
	delay := time.Second
	const maxDelay = 15 * time.Second

	b.logger.Info("polling for updates")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = b.cfg.PollTimeout

		updates, err := b.api.GetUpdates(u)
		if err != nil {
			b.logger.Warn("polling failed", "error", err, "retry_in", delay)
			if !sleep(ctx, delay) {
				return nil
			}
			delay = min(delay*2, maxDelay)
			continue
		}
		delay = time.Second

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.HandleUpdate(upd)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// HandleUpdate dispatches one update. Photos start a flow in the
// background; everything else is answered inline.
func (b *Bot) HandleUpdate(upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.send(cid, TextStart)
		}
		return
	}

	fileID, ok := imageFileID(msg)
	if !ok {
		b.send(cid, TextNoImg)
		return
	}

	lang := ""
	if msg.From != nil {
		lang = msg.From.LanguageCode
	}

	c, err := b.begin(cid, msg.MessageID, locale.LanguageCode(lang, b.cfg.Fallback))
	switch {
	case errors.Is(err, flow.ErrBusy):
		b.send(cid, TextBusy)
		return
	case err != nil:
		b.logger.Debug("photo ignored", "chat_id", cid, "error", err)
		return
	}

	go func() {
		defer b.end(c)
		if _, err := c.controller.Run(b.base, b.source(fileID)); err != nil {
			b.logger.Debug("flow finished", "chat_id", cid, "error", err)
		}
	}()
}

// imageFileID returns the file to translate: the largest photo size,
// or a document with an image MIME type.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if n := len(msg.Photo); n > 0 {
		return msg.Photo[n-1].FileID, true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, true
	}
	return "", false
}

// begin claims the chat for one flow. The reply target and language are
// fixed here and never change while the flow runs.
func (b *Bot) begin(chatID int64, replyTo int, lang string) (*chat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, flow.ErrClosed
	}
	if _, ok := b.active[chatID]; ok {
		return nil, flow.ErrBusy
	}
	c := newChat(b, chatID, replyTo, lang)
	b.active[chatID] = c
	b.wg.Add(1)
	return c, nil
}

// end releases the chat once its flow is back to Idle.
func (b *Bot) end(c *chat) {
	b.mu.Lock()
	if b.active[c.id] == c {
		delete(b.active, c.id)
	}
	b.mu.Unlock()
	c.controller.Close()
	b.wg.Done()
}

// ActiveChats returns how many chats have a flow in flight.
func (b *Bot) ActiveChats() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}

// Wait blocks until no chat has a flow in flight.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// Close cancels in-flight translations and stops accepting photos.
func (b *Bot) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.stop()
	b.wg.Wait()
	return nil
}

func (b *Bot) send(chatID int64, text string) {
	b.reply(chatID, 0, text)
}

func (b *Bot) reply(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", "chat_id", chatID, "error", err)
	}
}
