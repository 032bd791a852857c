package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry is one row of the key-value table.
type kvEntry struct {
	Key       string `gorm:"column:name;primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// KVRepository implements storage.KeyValueStore on a SQL table.
type KVRepository struct {
	db *gorm.DB
}

// NewKVRepository creates a new KVRepository.
func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key.
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry
	err := r.db.WithContext(ctx).First(&entry, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set upserts value under key.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&kvEntry{Key: key, Value: value}).Error
}

// Remove deletes key. Missing keys are ignored.
func (r *KVRepository) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&kvEntry{}, "name = ?", key).Error
}

// NewKeyValueStore selects the key-value backend by cfg.Driver.
// Parameters:
//   - cfg: storage configuration (file, sqlite or postgres).
// Returns:
//   - storage.KeyValueStore: the selected store.
//   - error: non-nil if the backend cannot be opened.
func NewKeyValueStore(cfg *config.StorageConfig) (storage.KeyValueStore, error) {
	switch cfg.Driver {
	case "file", "":
		return storage.NewFileKV(cfg.Dir)
	case "sqlite", "postgres":
		db, err := InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return NewKVRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
