// Package telegram adapts the Telegram Bot API to the bot package's
// transport interfaces.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ashureev/proxybot/internal/bot"
)

// Bot wraps a Telegram Bot API client. It implements bot.Sender.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// New creates a Telegram bot client and authenticates the token.
func New(token string, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Bot{api: api, logger: logger}, nil
}

// Send delivers one message. The Bot API client has no context support,
// so cancellation is only checked before the call.
func (b *Bot) Send(ctx context.Context, chatID int64, text string, opts bot.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if opts.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	switch {
	case len(opts.SuggestKeyboard) > 0:
		buttons := make([]tgbotapi.KeyboardButton, 0, len(opts.SuggestKeyboard))
		for _, value := range opts.SuggestKeyboard {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(value))
		}
		msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(buttons)
	case opts.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Poll long-polls for updates until the context is cancelled, handing each
// text message to handle on its own goroutine.
func (b *Bot) Poll(ctx context.Context, handle func(ctx context.Context, msg bot.Message)) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			msg := bot.Message{
				ChatID: update.Message.Chat.ID,
				Text:   update.Message.Text,
			}
			if update.Message.From != nil {
				msg.Sender = update.Message.From.UserName
			}

			go handle(ctx, msg)
		}
	}
}
