package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
	"github.com/radieske/sports-insights-poc/pkg/contracts/topics"
)

// RedisBroadcaster publica cada snapshot no canal lido pelo hub WebSocket
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = topics.SnapshotsBroadcast
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Name() string { return "redis_pubsub" }

func (b *RedisBroadcaster) Save(ctx context.Context, s predictions.Snapshot) error {
	payload, err := json.Marshal(WSUpdate{Page: s.Page, Payload: s})
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// WSUpdate é o payload padrão entregue aos clientes WebSocket
type WSUpdate struct {
	Page    string               `json:"page"`
	Payload predictions.Snapshot `json:"payload"`
}
