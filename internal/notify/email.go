package notify

import (
	"context"
	"fmt"

	"github.com/ozclean/submission-gateway/internal/config"
)

// Sends templated transactional email through the email provider's
// HTTP API. Template content lives with the provider; this client only
// names the template and supplies the data.
type EmailClient struct {
	baseURL string
	apiKey  string
	from    string
}

func NewEmailClient(cfg config.EmailConfig) *EmailClient {
	return &EmailClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
	}
}

// Returns the provider message id on success.
func (e *EmailClient) Send(ctx context.Context, to, template string, data map[string]interface{}) (string, error) {
	if e.baseURL == "" || e.apiKey == "" {
		return "", ErrNotConfigured
	}

	headers := map[string]string{
		"Authorization": "Bearer " + e.apiKey,
	}

	resp, err := postJSON(ctx, e.baseURL+"/send", headers, map[string]interface{}{
		"from":     e.from,
		"to":       to,
		"template": template,
		"data":     data,
	})
	if err != nil {
		return "", fmt.Errorf("email send failed: %w", err)
	}

	var result struct {
		MessageID string `json:"message_id"`
	}
	if err := decodeResponse(resp, "email", &result); err != nil {
		return "", err
	}

	return result.MessageID, nil
}
