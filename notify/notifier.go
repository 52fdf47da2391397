// Package notify fans emitted signals out to the configured channels.
package notify

import (
	"trademantra/config"
	"trademantra/logger"
	"trademantra/strategy"
)

// Notifier delivers one signal to one channel.
type Notifier interface {
	Send(sig *strategy.Signal) error
	Name() string
}

// Service fans signals out to every enabled channel. Delivery failures
// are logged, never propagated: notification is best effort.
type Service struct {
	notifiers []Notifier
}

// NewService builds the channel list from config.
func NewService(cfg config.NotifyConfig) *Service {
	s := &Service{}

	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		tn, err := NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn("telegram notifier init failed: %v", err)
		} else {
			s.notifiers = append(s.notifiers, tn)
			logger.Info("telegram notifications enabled")
		}
	}

	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		s.notifiers = append(s.notifiers, NewWebhookNotifier(cfg.Webhook.URL))
		logger.Info("webhook notifications enabled")
	}

	return s
}

// Notify delivers a signal to every channel.
func (s *Service) Notify(sig *strategy.Signal) {
	for _, n := range s.notifiers {
		if err := n.Send(sig); err != nil {
			logger.Warn("%s notification failed for %s: %v", n.Name(), sig.Symbol, err)
		}
	}
}

// NotifyAll delivers a batch.
func (s *Service) NotifyAll(signals []*strategy.Signal) {
	for _, sig := range signals {
		s.Notify(sig)
	}
}
