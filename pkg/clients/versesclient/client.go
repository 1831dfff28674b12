// Package versesclient fetches bible verse text from a public lookup
// service (bible-api.com compatible). Callers treat every failure as a
// soft miss and fall back to the bare reference.
package versesclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const lookupTimeout = 5 * time.Second

// Client calls the verse lookup service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a verse client for the given base URL (e.g.
// "https://bible-api.com").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: lookupTimeout},
	}
}

type verseResponse struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// Lookup fetches the text for a verse reference like "John 3:16".
// Non-2xx responses, malformed bodies, and empty text fields are all
// errors; the caller decides the fallback.
func (c *Client) Lookup(ctx context.Context, reference string) (string, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build verse request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("verse lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("verse lookup returned status %d", resp.StatusCode)
	}

	var body verseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode verse response: %w", err)
	}

	text := strings.TrimSpace(body.Text)
	if text == "" {
		return "", fmt.Errorf("verse lookup returned empty text for %q", reference)
	}
	return text, nil
}
