package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocall/pathway/pkg/adapters/memory"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

func TestLoader(t *testing.T) {
	p := &domain.Pathway{
		ID:    "demo",
		Nodes: []domain.Node{{ID: "talk", Kind: domain.KindConversation}},
	}
	l, err := memory.NewLoader(p)
	require.NoError(t, err)

	got, err := l.Load(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "talk", got.EntryPoint, "loader validates and resolves the entry point")

	_, err = l.Load(context.Background(), "nope")
	assert.Error(t, err)
}

func TestLoader_RejectsUnstartablePathway(t *testing.T) {
	p := &domain.Pathway{
		ID:    "bad",
		Nodes: []domain.Node{{ID: "hangup", Kind: domain.KindEndCall}},
	}
	_, err := memory.NewLoader(p)
	assert.ErrorIs(t, err, domain.ErrNoEntryPoint)
}

func TestCredentialStore_Contract(t *testing.T) {
	ports.RunCredentialStoreContract(t, memory.NewCredentialStore())
}

func TestCredentialStore_RefreshesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	refreshed := 0
	store := memory.NewCredentialStore(
		memory.WithClock(func() time.Time { return now }),
		memory.WithRefresher(func(_ context.Context, cred *domain.Credential) (*domain.Credential, error) {
			refreshed++
			fresh := *cred
			fresh.AccessToken = "fresh-token"
			fresh.ExpiresAt = now.Add(time.Hour)
			return &fresh, nil
		}),
	)

	require.NoError(t, store.PutCredential(ctx, &domain.Credential{
		UserID:      "u1",
		App:         "calendar",
		AccessToken: "stale-token",
		ExpiresAt:   now.Add(-time.Minute),
	}))

	cred, err := store.GetValidCredential(ctx, "u1", "calendar")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", cred.AccessToken)
	assert.Equal(t, 1, refreshed)

	// The refreshed credential was written back; no second refresh.
	cred, err = store.GetValidCredential(ctx, "u1", "calendar")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", cred.AccessToken)
	assert.Equal(t, 1, refreshed)
}

func TestSink_Records(t *testing.T) {
	sink := memory.NewSink()
	require.NoError(t, sink.Publish(context.Background(), &domain.TransitionEvent{SessionID: "s1"}))
	require.NoError(t, sink.Publish(context.Background(), &domain.TransitionEvent{SessionID: "s2"}))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "s1", events[0].SessionID)
}
