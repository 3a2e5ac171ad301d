package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/masjid-console/internal/domain"
)

// CredentialStore implements usecase.CredentialStore using Redis.
// Each session is one JSON value under "session:<id>" that expires with the session.
type CredentialStore struct {
	client *redis.Client
	prefix string
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{
		client: client,
		prefix: "session:",
	}
}

// Save stores cred for ttl.
func (s *CredentialStore) Save(ctx context.Context, cred *domain.Credential, ttl time.Duration) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	return s.client.Set(ctx, s.prefix+cred.SessionID, data, ttl).Err()
}

// Get loads a session, returning domain.ErrNotFound when it is missing or expired.
func (s *CredentialStore) Get(ctx context.Context, sessionID string) (*domain.Credential, error) {
	data, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", domain.ErrMalformedPayload, sessionID, err)
	}
	return &cred, nil
}

// MarkValidated records a successful whoami without extending the session.
func (s *CredentialStore) MarkValidated(ctx context.Context, sessionID string, user *domain.User, at time.Time) error {
	key := s.prefix + sessionID

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		ttl, err := tx.PTTL(ctx, key).Result()
		if err != nil {
			return err
		}
		if ttl <= 0 {
			return domain.ErrNotFound
		}

		var cred domain.Credential
		if err := json.Unmarshal(data, &cred); err != nil {
			return fmt.Errorf("%w: session %s: %v", domain.ErrMalformedPayload, sessionID, err)
		}
		if user != nil {
			cred.User = *user
		}
		cred.ValidatedAt = &at

		updated, err := json.Marshal(&cred)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		return err
	}, key)
}

// Delete removes a session. Only the call that actually removed it returns true.
func (s *CredentialStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Del(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
