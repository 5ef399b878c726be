package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Bot wraps the Telegram API client for the pieces this service needs:
// outbound notifications, webhook registration and the mini-app entry point.
type Bot struct {
	api       *telego.Bot
	webAppURL string
}

func New(token, webAppURL string) (*Bot, error) {
	api, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Bot{api: api, webAppURL: webAppURL}, nil
}

func (b *Bot) Send(ctx context.Context, userID int64, text string) error {
	_, err := b.api.SendMessage(ctx, tu.Message(tu.ID(userID), text))
	return err
}

// SendWelcome replies to /start with the button that opens the mini app.
func (b *Bot) SendWelcome(ctx context.Context, chatID int64) error {
	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🚀 Open EarnQuick").WithWebApp(&telego.WebAppInfo{URL: b.webAppURL}),
		),
	)

	_, err := b.api.SendMessage(ctx, tu.Message(
		tu.ID(chatID),
		"Welcome! Tap the button below to open the EarnQuick mini app.",
	).WithReplyMarkup(keyboard))
	return err
}

func (b *Bot) RegisterWebhook(ctx context.Context, url string) error {
	return b.api.SetWebhook(ctx, &telego.SetWebhookParams{URL: url})
}
