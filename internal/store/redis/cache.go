package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskscout/internal/domain"
)

// Hash fields stored under each ctx:session:* key.
const (
	fieldContextID = "context_id"
	fieldUpdatedAt = "updated_at"
)

// Cache reads session pointer rows straight from the key-value cache when
// it is reachable over the network, instead of shelling out to its
// command-line query interface.
type Cache struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.Cache.Close: %w", err)
	}
	return nil
}

// QueryRows scans every ctx:session:* key and decodes its row hash.
// Undecodable keys and incomplete hashes are dropped; rows come back
// ordered by update time descending.
func (c *Cache) QueryRows(ctx context.Context) ([]domain.SessionCacheRow, error) {
	var rows []domain.SessionCacheRow

	iter := c.client.Scan(ctx, 0, domain.CacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		row, err := domain.ParseSessionCacheKey(key)
		if err != nil {
			log.Debug().Str("key", key).Msg("dropping undecodable cache key")
			continue
		}

		fields, err := c.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis.Cache.QueryRows: hgetall %s: %w", key, err)
		}

		updatedAt, err := strconv.ParseInt(fields[fieldUpdatedAt], 10, 64)
		if err != nil {
			log.Debug().Str("key", key).Msg("dropping row with bad update time")
			continue
		}

		row.ContextID = fields[fieldContextID]
		row.UpdatedAt = updatedAt
		rows = append(rows, row)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis.Cache.QueryRows: scan: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].UpdatedAt > rows[j].UpdatedAt
	})
	return rows, nil
}
