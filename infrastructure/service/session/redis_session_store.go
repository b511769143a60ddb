package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/fabricflow/fabricflow/application/port/outbound"
)

// SessionStoreConfig configuration untuk session lookup
type SessionStoreConfig struct {
	Enabled   bool
	RedisURL  string
	KeyPrefix string
	Timeout   time.Duration
}

// RedisSessionStore resolves credentials to sessions stored as Redis hashes
// keyed by the SHA-256 of the credential
type RedisSessionStore struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	keyPrefix   string
	timeout     time.Duration
}

// NewSessionLookup builds the session lookup port. A disabled config yields
// a lookup that never finds a session.
func NewSessionLookup(config SessionStoreConfig, logger *logrus.Logger) (outbound.SessionLookup, error) {
	if !config.Enabled {
		logger.Info("Session lookup disabled")
		return noopSessionLookup{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"key_prefix": config.KeyPrefix,
	}).Info("Session lookup initialized")

	return NewRedisSessionStore(redisClient, config.KeyPrefix, config.Timeout, logger), nil
}

func NewRedisSessionStore(client *redis.Client, keyPrefix string, timeout time.Duration, logger *logrus.Logger) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = "session:"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisSessionStore{
		redisClient: client,
		logger:      logger,
		keyPrefix:   keyPrefix,
		timeout:     timeout,
	}
}

// LookupSession implements outbound.SessionLookup
func (s *RedisSessionStore) LookupSession(ctx context.Context, credential string) (*outbound.Session, error) {
	if credential == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.redisClient.HGetAll(ctx, s.Key(credential)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to look up session")
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if len(data) == 0 || data["id"] == "" {
		return nil, nil
	}

	return &outbound.Session{
		ID:   data["id"],
		Name: data["name"],
		Role: data["role"],
	}, nil
}

// SaveSession binds a credential to a session until ttl elapses
func (s *RedisSessionStore) SaveSession(ctx context.Context, credential string, session outbound.Session, ttl time.Duration) error {
	key := s.Key(credential)

	pipeline := s.redisClient.Pipeline()
	pipeline.HSet(ctx, key, map[string]interface{}{
		"id":   session.ID,
		"name": session.Name,
		"role": session.Role,
	})
	pipeline.Expire(ctx, key, ttl)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save session")
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Key returns the Redis key a credential is stored under
func (s *RedisSessionStore) Key(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return s.keyPrefix + hex.EncodeToString(sum[:])
}

// noopSessionLookup is used when session lookup is disabled
type noopSessionLookup struct{}

func (noopSessionLookup) LookupSession(ctx context.Context, credential string) (*outbound.Session, error) {
	return nil, nil
}
