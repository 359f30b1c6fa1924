package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleOptions configures the Google Custom Search client.
type GoogleOptions struct {
	APIKey     string
	EngineID   string
	NumResults int
	Referer    string // optional, for API keys with referer restrictions
	HTTPClient *http.Client
}

// GoogleClient implements Service against the Google Custom Search JSON API.
type GoogleClient struct {
	opts     GoogleOptions
	endpoint string
}

// NewGoogleClient creates a Google Custom Search backed lookup service.
func NewGoogleClient(apiKey, engineID string, optFns ...func(o *GoogleOptions)) *GoogleClient {
	opts := GoogleOptions{
		APIKey:     apiKey,
		EngineID:   engineID,
		NumResults: 3,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &GoogleClient{opts: opts, endpoint: googleEndpoint}
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements Service.
func (c *GoogleClient) Search(ctx context.Context, query string) ([]Result, error) {
	if c.opts.APIKey == "" || c.opts.EngineID == "" {
		return nil, fmt.Errorf("google search credentials not configured")
	}

	params := url.Values{}
	params.Set("key", c.opts.APIKey)
	params.Set("cx", c.opts.EngineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", c.opts.NumResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	if c.opts.Referer != "" {
		req.Header.Set("Referer", c.opts.Referer)
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}

	var decoded googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}

	return results, nil
}
