// Package kalshi implements the search adapter for the Kalshi exchange API.
// Market discovery and quotes come from public endpoints and need no
// credentials.
package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/David-McSharry/quantify/internal/platform"
)

// DefaultBaseURL is the public trade API root.
const DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Kalshi REST client. baseURL defaults to the public API
// when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: platform.NewHTTPClient(),
	}
}

// ListEvents returns one cursor page of open events. The returned cursor is
// empty on the last page.
func (c *Client) ListEvents(ctx context.Context, limit int, cursor string) ([]APIEvent, string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("status", "open")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp struct {
		Events []APIEvent `json:"events"`
		Cursor string     `json:"cursor"`
	}
	u := c.baseURL + "/events?" + params.Encode()
	if err := platform.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		return nil, "", fmt.Errorf("kalshi: list events: %w", err)
	}
	return resp.Events, resp.Cursor, nil
}

// ListEventMarkets returns the open markets nested under one event.
func (c *Client) ListEventMarkets(ctx context.Context, eventTicker string) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("event_ticker", eventTicker)
	params.Set("status", "open")

	var resp struct {
		Markets []APIMarket `json:"markets"`
	}
	u := c.baseURL + "/markets?" + params.Encode()
	if err := platform.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: list markets for %s: %w", eventTicker, err)
	}
	return resp.Markets, nil
}

// GetMarket returns a single market by its ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (APIMarket, error) {
	var resp struct {
		Market APIMarket `json:"market"`
	}
	u := c.baseURL + "/markets/" + url.PathEscape(ticker)
	if err := platform.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		return APIMarket{}, fmt.Errorf("kalshi: get market %s: %w", ticker, err)
	}
	return resp.Market, nil
}
