package apps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evocall/pathway/pkg/domain"
)

const maxResponseBytes = 1 << 20

// HTTPExecutor is the shared transport for the HTTP-backed integrations.
// Each action is POST <baseURL>/<action> with the interpolated parameters as
// a JSON body and the user's access token as a bearer credential.
type HTTPExecutor struct {
	app     string
	baseURL string
	client  *http.Client
	actions map[string]bool
}

// HTTPOption configures an HTTPExecutor.
type HTTPOption func(*HTTPExecutor)

// WithHTTPClient overrides the underlying client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(e *HTTPExecutor) { e.client = client }
}

// NewHTTPExecutor creates an executor for an arbitrary app. The allowed
// action set guards against pathway typos reaching the integration; pass
// none to allow any action.
func NewHTTPExecutor(app, baseURL string, actions []string, opts ...HTTPOption) *HTTPExecutor {
	e := &HTTPExecutor{
		app:     app,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	if len(actions) > 0 {
		e.actions = make(map[string]bool, len(actions))
		for _, a := range actions {
			e.actions[a] = true
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewCalendar creates the calendar integration executor.
func NewCalendar(baseURL string, opts ...HTTPOption) *HTTPExecutor {
	return NewHTTPExecutor("calendar", baseURL, []string{"create_event", "check_availability", "cancel_event"}, opts...)
}

// NewCRM creates the CRM integration executor.
func NewCRM(baseURL string, opts ...HTTPOption) *HTTPExecutor {
	return NewHTTPExecutor("crm", baseURL, []string{"create_contact", "create_deal", "log_activity"}, opts...)
}

// NewChat creates the chat integration executor.
func NewChat(baseURL string, opts ...HTTPOption) *HTTPExecutor {
	return NewHTTPExecutor("chat", baseURL, []string{"send_message"}, opts...)
}

// Execute implements ports.AppExecutor.
func (e *HTTPExecutor) Execute(ctx context.Context, action string, params map[string]any, cred *domain.Credential) (*domain.ActionResult, error) {
	if e.actions != nil && !e.actions[action] {
		return domain.ErrorResult(fmt.Errorf("%s: unknown action %q", e.app, action)), nil
	}

	body, err := json.Marshal(params)
	if err != nil {
		return domain.ErrorResult(fmt.Errorf("%s %s: encode params: %w", e.app, action, err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/"+action, bytes.NewReader(body))
	if err != nil {
		return domain.ErrorResult(fmt.Errorf("%s %s: build request: %w", e.app, action, err)), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if cred != nil && cred.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.ErrorResult(fmt.Errorf("%s %s: %w", e.app, action, err)), nil
	}
	defer resp.Body.Close()

	payload := decodeBody(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res := domain.ErrorResult(fmt.Errorf("%s %s: status %d", e.app, action, resp.StatusCode))
		if msg, ok := payload["user_message"].(string); ok {
			res.UserMessage = msg
		}
		return res, nil
	}

	res := &domain.ActionResult{
		Status: domain.ActionSuccess,
		Result: payload,
	}
	if msg, ok := payload["user_message"].(string); ok {
		res.UserMessage = msg
		delete(payload, "user_message")
	}
	return res, nil
}

// decodeBody parses the response payload as a JSON object. Anything else
// (empty body, arrays, plain text) yields nil so the result carries no
// fabricated fields.
func decodeBody(r io.Reader) map[string]any {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return payload
}
