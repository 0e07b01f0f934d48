// Package polymarket implements the search adapter for the Polymarket Gamma
// API.
package polymarket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/David-McSharry/quantify/internal/platform"
)

// DefaultBaseURL is the Gamma API root.
const DefaultBaseURL = "https://gamma-api.polymarket.com"

// Client is the REST client for the Polymarket Gamma API, which provides
// market discovery and metadata without credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gamma API client. baseURL defaults to the public API
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

// ListMarkets returns up to limit active, unresolved markets.
func (c *Client) ListMarkets(ctx context.Context, limit int) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(limit))

	var markets []APIMarket
	u := c.baseURL + "/markets?" + params.Encode()
	if err := platform.GetJSON(ctx, c.httpClient, u, &markets); err != nil {
		return nil, fmt.Errorf("polymarket: list markets: %w", err)
	}
	return markets, nil
}

// ListEvents returns one offset page of active events with their nested
// markets.
func (c *Client) ListEvents(ctx context.Context, limit, offset int) ([]APIEvent, error) {
	params := url.Values{}
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var events []APIEvent
	u := c.baseURL + "/events?" + params.Encode()
	if err := platform.GetJSON(ctx, c.httpClient, u, &events); err != nil {
		return nil, fmt.Errorf("polymarket: list events: %w", err)
	}
	return events, nil
}

// GetMarket returns a single market by its Gamma ID.
func (c *Client) GetMarket(ctx context.Context, id string) (APIMarket, error) {
	var market APIMarket
	u := c.baseURL + "/markets/" + url.PathEscape(id)
	if err := platform.GetJSON(ctx, c.httpClient, u, &market); err != nil {
		return APIMarket{}, fmt.Errorf("polymarket: get market %s: %w", id, err)
	}
	return market, nil
}
