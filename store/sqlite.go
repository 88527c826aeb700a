package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// cacheEntry is one row of the key/value table
type cacheEntry struct {
	Slot      string `gorm:"column:slot;primaryKey;size:128"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

func (cacheEntry) TableName() string { return "cache_entries" }

// SQLCache stores slots in a SQLite table
type SQLCache struct {
	db *gorm.DB
}

// OpenSQLCache opens (or creates) the database at path
func OpenSQLCache(path string) (*SQLCache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}
	return NewSQLCache(db)
}

// NewSQLCache wraps an open database and migrates the table
func NewSQLCache(db *gorm.DB) (*SQLCache, error) {
	if err := db.AutoMigrate(&cacheEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache table: %w", err)
	}
	return &SQLCache{db: db}, nil
}

// Get reads the slot for key
func (s *SQLCache) Get(ctx context.Context, key string) ([]byte, error) {
	var e cacheEntry
	err := s.db.WithContext(ctx).Where("slot = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache slot: %w", err)
	}
	return e.Value, nil
}

// Set upserts the slot for key
func (s *SQLCache) Set(ctx context.Context, key string, value []byte) error {
	e := cacheEntry{Slot: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write cache slot: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *SQLCache) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
