package ports

import (
	"context"
	"testing"
	"time"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SeedableCredentialStore is implemented by stores the contract suite can
// populate directly. Production writes happen through the OAuth collaborator,
// outside the engine.
type SeedableCredentialStore interface {
	CredentialStore
	PutCredential(ctx context.Context, cred *domain.Credential) error
}

// RunCredentialStoreContract verifies that a CredentialStore implementation
// adheres to the interface contract.
func RunCredentialStoreContract(t *testing.T, store SeedableCredentialStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		cred := &domain.Credential{
			UserID:      userID,
			App:         "calendar",
			AccessToken: "tok-1",
			ExpiresAt:   time.Now().Add(time.Hour),
		}
		require.NoError(t, store.PutCredential(ctx, cred))

		got, err := store.GetValidCredential(ctx, userID, "calendar")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", got.AccessToken)
		assert.Equal(t, "calendar", got.App)
	})

	t.Run("Not Connected", func(t *testing.T) {
		_, err := store.GetValidCredential(ctx, userID, "never-linked")
		assert.ErrorIs(t, err, domain.ErrNotConnected)
	})

	t.Run("Apps Are Isolated", func(t *testing.T) {
		require.NoError(t, store.PutCredential(ctx, &domain.Credential{
			UserID: userID, App: "crm", AccessToken: "tok-crm",
		}))

		got, err := store.GetValidCredential(ctx, userID, "crm")
		require.NoError(t, err)
		assert.Equal(t, "tok-crm", got.AccessToken)

		got, err = store.GetValidCredential(ctx, userID, "calendar")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", got.AccessToken)
	})
}
