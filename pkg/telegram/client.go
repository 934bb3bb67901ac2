package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
}

// Sender is the part of tgbotapi.BotAPI the client uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type client struct {
	bot    Sender
	chatID int64
}

// NewClient creates a new Telegram notifier client. It returns nil, nil when
// no token is configured so callers can treat notifications as optional.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	if botToken == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewClientWithSender(bot, chatID), nil
}

// NewClientWithSender wraps an existing sender.
func NewClientWithSender(bot Sender, chatID int64) Notifier {
	return &client{bot: bot, chatID: chatID}
}

// SendMessage sends text to the configured chat, split into parts that fit
// Telegram's message size limit.
func (c *client) SendMessage(text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(c.chatID, part)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := c.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
	}
	return nil
}
