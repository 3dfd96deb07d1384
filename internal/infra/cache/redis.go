package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

// Redis stores structured analyses as JSON strings.
type Redis struct {
	rdb *goredis.Client
}

// NewRedis connects and pings once.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (*critique.StructuredAnalysis, bool, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a, err := decode(raw)
	if err != nil {
		// entry rusak, anggap miss
		_ = r.rdb.Del(ctx, key).Err()
		return nil, false, nil
	}
	return a, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, a *critique.StructuredAnalysis, ttl time.Duration) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, raw, ttl).Err()
}

// Check is used by the readiness check.
func (r *Redis) Check(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }

func decode(raw []byte) (*critique.StructuredAnalysis, error) {
	var a critique.StructuredAnalysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	if a.DetectedStyle == "" {
		return nil, errors.New("cached analysis has no style")
	}
	return &a, nil
}
