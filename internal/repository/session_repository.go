package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
)

const sessionKeyPrefix = "session:access:"

// SessionRepository stores mini-app sessions in Redis, keyed by the literal
// access token with a per-key TTL. Each login overwrites its own key only;
// there is no cross-session invalidation.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Save stores the session under the access token with the given TTL.
func (r *SessionRepository) Save(ctx context.Context, accessToken string, session models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := sessionKeyPrefix + accessToken
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Find returns the session stored under the access token, or ErrCacheMiss if
// it does not exist or its TTL has elapsed.
func (r *SessionRepository) Find(ctx context.Context, accessToken string) (*models.Session, error) {
	key := sessionKeyPrefix + accessToken
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return &session, nil
}
