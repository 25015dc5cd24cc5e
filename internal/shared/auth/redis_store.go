package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore compartilha a sessão entre réplicas do serviço
type RedisStore struct {
	R      *redis.Client
	Prefix string        // ex: "insights:"
	TTL    time.Duration // 0 = sem expiração
}

func NewRedisStore(r *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{R: r, Prefix: prefix, TTL: ttl}
}

func (s *RedisStore) key(k string) string { return s.Prefix + k }

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	tok, err := s.R.Get(ctx, s.key(KeyToken)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && tok == "") {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return tok, nil
}

func (s *RedisStore) User(ctx context.Context) (*User, error) {
	b, err := s.R.Get(ctx, s.key(KeyUser)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (s *RedisStore) Set(ctx context.Context, token string, user *User) error {
	pipe := s.R.TxPipeline()
	pipe.Set(ctx, s.key(KeyToken), token, s.TTL)
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return err
		}
		pipe.Set(ctx, s.key(KeyUser), b, s.TTL)
	} else {
		pipe.Del(ctx, s.key(KeyUser))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.R.Del(ctx, s.key(KeyToken), s.key(KeyUser)).Err()
}
