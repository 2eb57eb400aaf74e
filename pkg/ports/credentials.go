package ports

import (
	"context"

	"github.com/evocall/pathway/pkg/domain"
)

// CredentialStore resolves a user's integration credential. Refresh of an
// expired token happens inside the store; callers always receive a credential
// that is valid at return time, or an error.
//
// Returns domain.ErrNotConnected when the user never linked the app.
type CredentialStore interface {
	GetValidCredential(ctx context.Context, userID, app string) (*domain.Credential, error)
}

// RefreshFunc exchanges an expired credential for a fresh one. The OAuth
// token endpoint call lives behind this seam; stores invoke it when the
// stored credential is past its expiry.
type RefreshFunc func(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
