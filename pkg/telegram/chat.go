package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teslashibe/go-phototranslate/pkg/flow"
)

// chat is the flow.UI of one photo's flow in a conversation.
type chat struct {
	bot        *Bot
	id         int64
	replyTo    int
	lang       string
	controller *flow.Controller
}

func newChat(b *Bot, id int64, replyTo int, lang string) *chat {
	c := &chat{bot: b, id: id, replyTo: replyTo, lang: lang}
	c.controller = flow.NewController(b.translator, c,
		flow.WithLanguage(c.language),
		flow.WithLogger(b.logger.With("chat_id", id)),
	)
	return c
}

func (c *chat) language() string {
	return c.lang
}

// ShowControls is a no-op; a chat has no controls to hide.
func (c *chat) ShowControls(bool) {}

// ShowBusy shows the typing indicator while a flow runs.
func (c *chat) ShowBusy(label string) {
	if label == "" {
		return
	}
	if _, err := c.bot.api.Send(tgbotapi.NewChatAction(c.id, tgbotapi.ChatTyping)); err != nil {
		c.bot.logger.Debug("chat action failed", "chat_id", c.id, "error", err)
	}
}

// Present replies with the translation. A chat message needs no
// acknowledgement, so it returns at once.
func (c *chat) Present(ctx context.Context, text string) error {
	if text == "" {
		text = "(no text found)"
	}
	c.bot.reply(c.id, c.replyTo, text)
	return nil
}

// Notify replies with the failure notice.
func (c *chat) Notify(ctx context.Context, f *flow.Failure) {
	c.bot.reply(c.id, c.replyTo, "⚠️ "+f.Message())
}
