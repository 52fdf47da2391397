// Package storage persists transactions and emitted signals through
// GORM, with the dialector chosen by configuration.
package storage

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is a persisted buy or sell used by the tax calculator.
type Transaction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"index:idx_user_symbol" json:"user_id"`
	Symbol    string         `gorm:"index:idx_user_symbol" json:"symbol"`
	Side      string         `json:"side"` // BUY, SELL
	Quantity  float64        `json:"quantity"`
	Price     float64        `json:"price"`
	Date      time.Time      `gorm:"index" json:"date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SignalRecord is a persisted strategy signal.
type SignalRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index" json:"user_id"`
	Symbol      string    `gorm:"index" json:"symbol"`
	Action      string    `json:"action"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	Confidence  float64   `json:"confidence"`
	StopLoss    float64   `json:"stop_loss"`
	TakeProfit  float64   `json:"take_profit"`
	Strategy    string    `json:"strategy"`
	Reason      string    `json:"reason"`
	GeneratedAt time.Time `gorm:"index" json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}
