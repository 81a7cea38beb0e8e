// Package session keeps login sessions in Redis under session:<token>.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("session not found or expired")

type Store interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func key(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *redisStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("session: failed to generate token: %w", err)
	}

	if err := s.client.Set(ctx, key(token.String()), userID.String(), s.ttl).Err(); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("session: failed to store session")
		return "", fmt.Errorf("session: failed to store session: %w", err)
	}

	return token.String(), nil
}

// Get resolves token to a user id and extends the session's lifetime.
func (s *redisStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrNotFound
	}

	value, err := s.client.GetEx(ctx, key(token), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("session: failed to read session: %w", err)
	}

	userID, err := uuid.FromString(value)
	if err != nil {
		log.Warn().Err(err).Msg("session: stored value is not a user id")
		return uuid.Nil, ErrNotFound
	}

	return userID, nil
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("session: failed to delete session: %w", err)
	}
	return nil
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return client, nil
}
