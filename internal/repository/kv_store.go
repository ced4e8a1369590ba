package repository

import (
	"context"
	"errors"
	"time"

	"procurement/internal/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrKeyNotFound is returned by KVStore.Get for a key that was never set.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the key-value persistence the request repository writes through.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type gormKVStore struct {
	db *gorm.DB
}

// NewGormKVStore stores values in the kv_entries table.
func NewGormKVStore(db *gorm.DB) KVStore {
	return &gormKVStore{db: db}
}

func (s *gormKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	if err := GetDB(ctx, s.db).First(&entry, "entry_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *gormKVStore) Set(ctx context.Context, key string, value []byte) error {
	entry := model.KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return GetDB(ctx, s.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

type redisKVStore struct {
	cli *redis.Client
}

// NewRedisKVStore stores values as plain redis strings.
func NewRedisKVStore(cli *redis.Client) KVStore {
	return &redisKVStore{cli: cli}
}

// NewRedisClient parses a redis:// url into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func (s *redisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return b, err
}

func (s *redisKVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.cli.Set(ctx, key, value, 0).Err()
}
