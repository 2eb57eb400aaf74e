package memory

import (
	"context"
	"sync"
	"time"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

// CredentialStore implements ports.CredentialStore in memory.
// Safe for concurrent use.
type CredentialStore struct {
	mu        sync.RWMutex
	creds     map[string]*domain.Credential
	refresher ports.RefreshFunc
	now       func() time.Time
}

// CredentialOption configures the store.
type CredentialOption func(*CredentialStore)

// WithRefresher enables delegated refresh of expired credentials.
func WithRefresher(fn ports.RefreshFunc) CredentialOption {
	return func(s *CredentialStore) { s.refresher = fn }
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) CredentialOption {
	return func(s *CredentialStore) { s.now = now }
}

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore(opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		creds: make(map[string]*domain.Credential),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func credKey(userID, app string) string {
	return userID + "/" + app
}

// PutCredential stores a credential, overwriting any previous one.
func (s *CredentialStore) PutCredential(ctx context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cred
	s.creds[credKey(cred.UserID, cred.App)] = &copied
	return nil
}

// GetValidCredential returns the stored credential, refreshing it first when
// expired and a refresher is configured.
func (s *CredentialStore) GetValidCredential(ctx context.Context, userID, app string) (*domain.Credential, error) {
	s.mu.RLock()
	cred, ok := s.creds[credKey(userID, app)]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotConnected
	}

	if cred.Expired(s.now()) && s.refresher != nil {
		fresh, err := s.refresher(ctx, cred)
		if err != nil {
			return nil, err
		}
		if err := s.PutCredential(ctx, fresh); err != nil {
			return nil, err
		}
		ret := *fresh
		return &ret, nil
	}

	ret := *cred
	return &ret, nil
}
