package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trademantra/strategy"
)

// TelegramNotifier sends signal summaries through the Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram notifier.
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("telegram bot token or chat id not configured")
	}
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 3 * time.Second},
	}, nil
}

// Name identifies the channel.
func (tn *TelegramNotifier) Name() string {
	return "telegram"
}

// Send posts one signal message.
func (tn *TelegramNotifier) Send(sig *strategy.Signal) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", tn.botToken)

	payload := map[string]interface{}{
		"chat_id":    tn.chatID,
		"text":       formatSignalMessage(sig),
		"parse_mode": "Markdown",
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tn.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return nil
}

func formatSignalMessage(sig *strategy.Signal) string {
	return fmt.Sprintf("*%s %s* @ %.2f\nqty %d, confidence %.0f%%\nSL %.2f / TP %.2f\n_%s_",
		sig.Action, sig.Symbol, sig.Price, sig.Quantity, sig.Confidence,
		sig.StopLoss, sig.TakeProfit, sig.Reason)
}
