package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"merkwatch/watcher-service/internal/model"
)

// TelegramNotifier delivers alert summaries as Telegram messages to a
// fixed chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes the bot once at startup so a bad token
// fails fast instead of on the first alert.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, items []model.AlertItem) error {
	if len(items) == 0 {
		return nil
	}
	title, message := FormatAlerts(items)
	msg := tgbotapi.NewMessage(n.chatID, title+"\n\n"+message)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
