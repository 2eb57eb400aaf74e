package apps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/evocall/pathway/pkg/domain"
)

// Webhook posts the mapped fields to a caller-configured URL. Unlike the
// named integrations the target comes from the pathway itself, via the
// reserved "url" field mapping, so one executor serves every endpoint.
type Webhook struct {
	client *http.Client
}

// WebhookOption configures the executor.
type WebhookOption func(*Webhook)

// WithWebhookClient overrides the underlying client.
func WithWebhookClient(client *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = client }
}

// NewWebhook creates the webhook executor.
func NewWebhook(opts ...WebhookOption) *Webhook {
	w := &Webhook{
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute implements ports.AppExecutor. The action name becomes the payload
// envelope so the receiver can dispatch on it.
func (w *Webhook) Execute(ctx context.Context, action string, params map[string]any, cred *domain.Credential) (*domain.ActionResult, error) {
	url, ok := params["url"].(string)
	if !ok || url == "" {
		return domain.ErrorResult(fmt.Errorf("webhook %s: missing url field mapping", action)), nil
	}

	fields := make(map[string]any, len(params))
	for k, v := range params {
		if k != "url" {
			fields[k] = v
		}
	}
	body, err := json.Marshal(map[string]any{
		"action": action,
		"fields": fields,
	})
	if err != nil {
		return domain.ErrorResult(fmt.Errorf("webhook %s: encode payload: %w", action, err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.ErrorResult(fmt.Errorf("webhook %s: build request: %w", action, err)), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if cred != nil && cred.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.ErrorResult(fmt.Errorf("webhook %s: %w", action, err)), nil
	}
	defer resp.Body.Close()

	payload := decodeBody(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ErrorResult(fmt.Errorf("webhook %s: status %d", action, resp.StatusCode)), nil
	}
	return &domain.ActionResult{Status: domain.ActionSuccess, Result: payload}, nil
}
