package notify

import (
	"context"
	"fmt"

	"github.com/ozclean/submission-gateway/internal/config"
)

// Forwards submissions to the automation workflow endpoint, secured by
// a shared-secret header.
type WebhookForwarder struct {
	url    string
	secret string
}

func NewWebhookForwarder(cfg config.WebhookConfig) *WebhookForwarder {
	return &WebhookForwarder{
		url:    cfg.URL,
		secret: cfg.Secret,
	}
}

func (w *WebhookForwarder) Forward(ctx context.Context, payload map[string]interface{}) error {
	if w.url == "" {
		return ErrNotConfigured
	}

	headers := map[string]string{}
	if w.secret != "" {
		headers["X-Webhook-Secret"] = w.secret
	}

	resp, err := postJSON(ctx, w.url, headers, payload)
	if err != nil {
		return fmt.Errorf("webhook forward failed: %w", err)
	}

	return drainAndCheck(resp, "webhook")
}
