package notify

import (
	"context"
	"fmt"

	"github.com/ozclean/submission-gateway/internal/config"
)

// Sends team notifications to a Telegram group chat.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
}

func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  "https://api.telegram.org",
	}
}

func (t *TelegramNotifier) Notify(ctx context.Context, message string) error {
	if t.botToken == "" || t.chatID == "" {
		return ErrNotConfigured
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	resp, err := postJSON(ctx, url, nil, map[string]interface{}{
		"chat_id": t.chatID,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}

	return drainAndCheck(resp, "telegram")
}
