// Package manifold implements the search adapter for Manifold Markets.
package manifold

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/David-McSharry/quantify/internal/platform"
)

// DefaultBaseURL is the Manifold API root.
const DefaultBaseURL = "https://api.manifold.markets"

// searchLimit is the single-call result limit for the native search endpoint.
const searchLimit = 20

// Client is the REST client for the Manifold Markets API. Search endpoints
// require no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Manifold REST client. baseURL defaults to the public
// API when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: platform.NewHTTPClient(),
	}
}

// SearchMarkets queries Manifold's native search endpoint.
func (c *Client) SearchMarkets(ctx context.Context, term string) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("limit", strconv.Itoa(searchLimit))

	var markets []APIMarket
	u := c.baseURL + "/v0/search-markets?" + params.Encode()
	if err := platform.GetJSON(ctx, c.httpClient, u, &markets); err != nil {
		return nil, fmt.Errorf("manifold: search markets: %w", err)
	}
	return markets, nil
}

// GetMarket returns the full market detail, including multi-choice answers.
func (c *Client) GetMarket(ctx context.Context, id string) (APIMarketDetail, error) {
	var detail APIMarketDetail
	u := c.baseURL + "/v0/market/" + url.PathEscape(id)
	if err := platform.GetJSON(ctx, c.httpClient, u, &detail); err != nil {
		return APIMarketDetail{}, fmt.Errorf("manifold: get market %s: %w", id, err)
	}
	return detail, nil
}
