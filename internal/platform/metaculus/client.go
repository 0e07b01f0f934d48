// Package metaculus implements the search adapter for the Metaculus
// forecasting platform. Metaculus has no traded volume; forecaster counts
// stand in for liquidity.
package metaculus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/David-McSharry/quantify/internal/platform"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://www.metaculus.com/api2"

// Client is the REST client for the Metaculus API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Metaculus API client. baseURL defaults to the public
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

// ListQuestions returns one offset page of open questions.
func (c *Client) ListQuestions(ctx context.Context, limit, offset int) ([]APIQuestion, error) {
	params := url.Values{}
	params.Set("status", "open")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp struct {
		Results []APIQuestion `json:"results"`
	}
	u := c.baseURL + "/questions/?" + params.Encode()
	if err := platform.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		return nil, fmt.Errorf("metaculus: list questions: %w", err)
	}
	return resp.Results, nil
}

// GetQuestion returns a single question by its numeric ID.
func (c *Client) GetQuestion(ctx context.Context, id string) (APIQuestion, error) {
	var q APIQuestion
	u := c.baseURL + "/questions/" + url.PathEscape(id) + "/"
	if err := platform.GetJSON(ctx, c.httpClient, u, &q); err != nil {
		return APIQuestion{}, fmt.Errorf("metaculus: get question %s: %w", id, err)
	}
	return q, nil
}
