package jokes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultURL = "https://official-joke-api.appspot.com/random_joke"

// Client fetches one joke per call from an official-joke-api style endpoint.
type Client struct {
	url        string
	format     string
	httpClient *http.Client
}

type joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// NewClient creates a client. format receives setup and punchline, in that order.
func NewClient(url, format string) *Client {
	if url == "" {
		url = DefaultURL
	}
	if format == "" {
		format = "Bad joke time: %s... %s"
	}
	return &Client{
		url:    url,
		format: format,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch returns the joke as one spoken line. An empty string with a nil
// error means there was nothing to tell.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch joke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var j joke
	if err := json.NewDecoder(resp.Body).Decode(&j); err != nil {
		return "", fmt.Errorf("decode error: %w", err)
	}

	setup, punchline := strings.TrimSpace(j.Setup), strings.TrimSpace(j.Punchline)
	if setup == "" || punchline == "" {
		return "", nil
	}
	return fmt.Sprintf(c.format, setup, punchline), nil
}
