package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocall/pathway/pkg/adapters/redis"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCredentialStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunCredentialStoreContract(t, redis.NewCredentialStore(client))
}

func TestCredentialStore_Prefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewCredentialStore(client, redis.WithPrefix("custom:"))

	ctx := context.Background()
	require.NoError(t, store.PutCredential(ctx, &domain.Credential{
		UserID: "u1", App: "calendar", AccessToken: "tok",
	}))

	assert.True(t, mr.Exists("custom:cred:u1:calendar"))
}

func TestCredentialStore_RefreshWriteback(t *testing.T) {
	_, client := newTestClient(t)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	refreshes := 0
	store := redis.NewCredentialStore(client,
		redis.WithClock(func() time.Time { return now }),
		redis.WithRefresher(func(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
			refreshes++
			fresh := *cred
			fresh.AccessToken = "fresh-tok"
			fresh.ExpiresAt = now.Add(time.Hour)
			return &fresh, nil
		}),
	)

	ctx := context.Background()
	require.NoError(t, store.PutCredential(ctx, &domain.Credential{
		UserID:      "u1",
		App:         "crm",
		AccessToken: "stale-tok",
		ExpiresAt:   now.Add(-time.Minute),
	}))

	got, err := store.GetValidCredential(ctx, "u1", "crm")
	require.NoError(t, err)
	assert.Equal(t, "fresh-tok", got.AccessToken)

	// The refreshed token was written back, so the next read does not
	// refresh again.
	got, err = store.GetValidCredential(ctx, "u1", "crm")
	require.NoError(t, err)
	assert.Equal(t, "fresh-tok", got.AccessToken)
	assert.Equal(t, 1, refreshes)
}

func TestSink_Publish(t *testing.T) {
	_, client := newTestClient(t)
	sink := redis.NewSink(client, redis.WithStream("events"))

	ctx := context.Background()
	ev := &domain.TransitionEvent{
		Timestamp:      time.Now().UTC(),
		SessionID:      "s1",
		PathwayID:      "bookings",
		TurnIndex:      3,
		NodeBefore:     "greet",
		NodeAfter:      "book",
		VariablesDelta: map[string]any{"guest_name": "Ada"},
	}
	require.NoError(t, sink.Publish(ctx, ev))

	msgs, err := client.XRange(ctx, "events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, "s1", msgs[0].Values["session_id"])

	raw, ok := msgs[0].Values["event"].(string)
	require.True(t, ok)
	var decoded domain.TransitionEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "book", decoded.NodeAfter)
	assert.Equal(t, "Ada", decoded.VariablesDelta["guest_name"])
}
