package domain

import "time"

// ActionStatus values for ActionResult.
const (
	ActionSuccess = "success"
	ActionError   = "error"
)

// ActionResult is the outcome of one app action execution. Executor failures
// of any kind (transport, auth, unknown action) are expressed here as
// Status == ActionError; they never propagate as unhandled faults.
type ActionResult struct {
	Status string `json:"status"`

	// Result carries integration-specific output (e.g. {"event_id": "e1"}).
	// On success it is merged into the session variables under a key
	// namespaced by the node id.
	Result map[string]any `json:"result,omitempty"`

	// UserMessage, if set, is spoken to the caller instead of the generic
	// confirmation or apology.
	UserMessage string `json:"user_message,omitempty"`

	// Err holds the failure detail for logs. Not spoken.
	Err string `json:"error,omitempty"`
}

// Succeeded reports whether the action completed successfully.
func (r *ActionResult) Succeeded() bool {
	return r != nil && r.Status == ActionSuccess
}

// ErrorResult builds a failed ActionResult from an error.
func ErrorResult(err error) *ActionResult {
	res := &ActionResult{Status: ActionError}
	if err != nil {
		res.Err = err.Error()
	}
	return res
}

// Credential is a consumable integration credential. The OAuth dance that
// minted it lives outside the engine; only consumption (and delegated
// refresh) is in scope here.
type Credential struct {
	UserID       string    `json:"user_id"`
	App          string    `json:"app"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the access token needs a refresh before use.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
