package ports

import (
	"context"

	"github.com/evocall/pathway/pkg/domain"
)

// AppExecutor performs side-effecting operations for one integration.
// Implementations dispatch on the action name and must express every failure
// mode through the returned error or an error-status result; the engine
// converts either into an error ActionResult and keeps the call alive.
type AppExecutor interface {
	Execute(ctx context.Context, action string, params map[string]any, cred *domain.Credential) (*domain.ActionResult, error)
}

// ExecutorRegistry resolves the executor registered for an app name.
// An unknown app is not an error here; the engine turns it into an
// error-status ActionResult.
type ExecutorRegistry interface {
	Resolve(app string) (AppExecutor, bool)
}
