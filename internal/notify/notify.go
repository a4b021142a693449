// Package notify wraps the external collaborators the orchestrator
// fans out to: team chat, the automation webhook, transactional email,
// calendar and billing. Each client is a narrow HTTP wrapper; an
// unconfigured integration returns ErrNotConfigured so callers can
// record the step as skipped instead of failed. Calls go out exactly
// once, with the default client's timeout behavior.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotConfigured marks an integration whose credentials or endpoint
// are absent from the configuration.
var ErrNotConfigured = errors.New("integration not configured")

func postJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

func drainAndCheck(resp *http.Response, collaborator string) error {
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned status %d", collaborator, resp.StatusCode)
	}
	return nil
}

func decodeResponse(resp *http.Response, collaborator string, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned status %d", collaborator, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", collaborator, err)
	}
	return nil
}
