// Package redis provides Redis-backed adapters: a credential store for
// integration tokens and an event sink appending transition events to a
// stream.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

const defaultPrefix = "pathway:"

// CredentialStore implements ports.CredentialStore on Redis. Each credential
// is a JSON blob under <prefix>cred:<user>:<app>; refresh of an expired token
// is delegated to the configured RefreshFunc and written back.
type CredentialStore struct {
	client    *backend.Client
	prefix    string
	refresher ports.RefreshFunc
	now       func() time.Time
}

// CredentialOption configures the store.
type CredentialOption func(*CredentialStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) CredentialOption {
	return func(s *CredentialStore) { s.prefix = prefix }
}

// WithRefresher enables delegated refresh of expired credentials.
func WithRefresher(fn ports.RefreshFunc) CredentialOption {
	return func(s *CredentialStore) { s.refresher = fn }
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) CredentialOption {
	return func(s *CredentialStore) { s.now = now }
}

// NewCredentialStore creates a store on an existing client.
func NewCredentialStore(client *backend.Client, opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		client: client,
		prefix: defaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CredentialStore) key(userID, app string) string {
	return s.prefix + "cred:" + userID + ":" + app
}

// PutCredential stores a credential, overwriting any previous one.
func (s *CredentialStore) PutCredential(ctx context.Context, cred *domain.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := s.client.Set(ctx, s.key(cred.UserID, cred.App), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

// GetValidCredential loads the credential, refreshing it first when expired
// and a refresher is configured. The refreshed credential is written back so
// concurrent sessions see it.
func (s *CredentialStore) GetValidCredential(ctx context.Context, userID, app string) (*domain.Credential, error) {
	data, err := s.client.Get(ctx, s.key(userID, app)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("redis get credential: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	if cred.Expired(s.now()) && s.refresher != nil {
		fresh, err := s.refresher(ctx, &cred)
		if err != nil {
			return nil, fmt.Errorf("refresh credential for %s/%s: %w", userID, app, err)
		}
		if err := s.PutCredential(ctx, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	return &cred, nil
}
