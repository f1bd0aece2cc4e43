// Package dadjoke fetches jokes from icanhazdadjoke.com for the joker
// conversation.
package dadjoke

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// jokeResponse is the minimal response shape of the joke endpoint.
type jokeResponse struct {
	ID   string `json:"id"`
	Joke string `json:"joke"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    "https://icanhazdadjoke.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Random returns one joke.
func (c *Client) Random(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("dadjoke: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dadjoke: fetch joke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dadjoke: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("dadjoke: read response: %w", err)
	}
	var decoded jokeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("dadjoke: decode response: %w", err)
	}
	if decoded.Joke == "" {
		return "", fmt.Errorf("dadjoke: response missing joke text")
	}
	return decoded.Joke, nil
}
