package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis abre o cliente e espera o Redis responder ao PING,
// com backoff exponencial limitado por maxWait.
func ConnectRedis(ctx context.Context, addr string, maxWait time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait

	op := func() error {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rdb.Ping(pctx).Err()
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return rdb, nil
}
