package notify

import (
	"context"
	"fmt"

	"github.com/ozclean/submission-gateway/internal/config"
)

type InvoiceRequest struct {
	Reference     string `json:"reference"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	AmountCents   int64  `json:"amount_cents"`
	Description   string `json:"description"`
	DueDate       string `json:"due_date,omitempty"`
}

// Creates invoices with the billing provider. When invoicing is down or
// unconfigured the caller falls back to the generic payment link.
type BillingClient struct {
	baseURL     string
	apiKey      string
	paymentLink string
}

func NewBillingClient(cfg config.BillingConfig) *BillingClient {
	return &BillingClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		paymentLink: cfg.PaymentLink,
	}
}

// Returns a URL the customer can pay at.
func (b *BillingClient) CreateInvoice(ctx context.Context, invoice InvoiceRequest) (string, error) {
	if b.baseURL == "" || b.apiKey == "" {
		return "", ErrNotConfigured
	}

	headers := map[string]string{"Authorization": "Bearer " + b.apiKey}
	resp, err := postJSON(ctx, b.baseURL+"/invoices", headers, invoice)
	if err != nil {
		return "", fmt.Errorf("invoice create failed: %w", err)
	}

	var result struct {
		InvoiceURL string `json:"invoice_url"`
	}
	if err := decodeResponse(resp, "billing", &result); err != nil {
		return "", err
	}

	return result.InvoiceURL, nil
}

// Generic fallback payment link, empty when none is configured.
func (b *BillingClient) PaymentLink() string {
	return b.paymentLink
}
