// Package platform holds the plumbing shared by every provider adapter: the
// unauthenticated JSON GET helper, tolerant decoders for dual-shaped fields,
// probability clamping, and the pagination loop.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/David-McSharry/quantify/internal/domain"
)

// requestTimeout bounds any single provider request.
const requestTimeout = 30 * time.Second

// NewHTTPClient returns the http.Client used by provider adapters.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// GetJSON sends an unauthenticated GET request and decodes the JSON response
// body into v. Non-2xx statuses are mapped onto domain sentinel errors where
// they have one.
func GetJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, url); err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w (%w)", err, domain.ErrBadResponse)
	}
	return nil
}

// checkStatus maps non-2xx HTTP status codes to errors.
func checkStatus(statusCode int, url string) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("HTTP %d for %s: %w", statusCode, url, domain.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("HTTP %d for %s: %w", statusCode, url, domain.ErrUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("HTTP %d for %s: %w", statusCode, url, domain.ErrRateLimited)
	default:
		return fmt.Errorf("HTTP %d for %s", statusCode, url)
	}
}
