package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config selects the dialector and connection pool sizes.
type Config struct {
	Type            string        // sqlite, postgres, mysql
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
}

// Store wraps the GORM handle with the query surface the API needs.
type Store struct {
	db *gorm.DB
}

// Open connects, configures the pool and migrates the schema.
func Open(cfg Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	logLevel := gormlogger.Silent
	switch cfg.LogLevel {
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(&Transaction{}, &SignalRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ========== transactions ==========

// SaveTransaction persists one buy or sell.
func (s *Store) SaveTransaction(tx *Transaction) error {
	return s.db.Create(tx).Error
}

// Transactions returns a user's history ordered by trade date. An
// empty symbol returns all symbols.
func (s *Store) Transactions(userID, symbol string) ([]Transaction, error) {
	var txs []Transaction
	q := s.db.Where("user_id = ?", userID)
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	err := q.Order("date asc").Find(&txs).Error
	return txs, err
}

// ========== signals ==========

// SaveSignals persists a batch of emitted signals.
func (s *Store) SaveSignals(records []SignalRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Create(&records).Error
}

// RecentSignals returns the latest signals for a user, newest first.
func (s *Store) RecentSignals(userID string, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []SignalRecord
	err := s.db.Where("user_id = ?", userID).
		Order("generated_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}
