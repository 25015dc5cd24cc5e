package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// SnapshotCache guarda o último snapshot de cada página no Redis com TTL.
// Na subida o serviço restaura daqui o lote antigo antes do primeiro fetch.
type SnapshotCache struct {
	R   *redis.Client
	TTL time.Duration
}

func NewSnapshotCache(r *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{R: r, TTL: ttl}
}

func key(page string) string { return "insights:snapshot:" + page }

func (c *SnapshotCache) Name() string { return "redis_cache" }

// Save sobrescreve o snapshot da página
func (c *SnapshotCache) Save(ctx context.Context, s predictions.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key(s.Page), b, c.TTL).Err()
}

// Load devolve ok=false quando não há snapshot (ou expirou)
func (c *SnapshotCache) Load(ctx context.Context, page string) (predictions.Snapshot, bool, error) {
	var s predictions.Snapshot
	b, err := c.R.Get(ctx, key(page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, false, err
	}
	return s, true, nil
}
