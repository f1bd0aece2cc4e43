// Package twilio sends SMS messages through the Twilio REST API. It is the
// notification channel behind the conversation tracker's Messenger
// capability.
package twilio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"household-agent/internal/integrations/paramstore"
)

// credentials is the expected JSON shape stored in SSM for the account.
type credentials struct {
	SID       string `json:"sid"`
	AuthToken string `json:"auth_token"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware
// context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("twilio: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client sends SMS messages on behalf of the configured sender number.
// Credentials and the sender number are fetched from the parameter store on
// first use and reused for the lifetime of the process.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      paramstore.Getter
	paramPrefix string

	credsOnce sync.Once
	creds     credentials
	sender    string
	credsErr  error
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

// NewClient creates a Client backed by the given paramstore.Getter for
// credential retrieval.
func NewClient(ps paramstore.Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("twilio: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("twilio: parameter prefix must not be empty")
	}
	c := &Client{
		baseURL:     "https://api.twilio.com",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Recipients returns the household phone numbers the assistant talks to.
func (c *Client) Recipients(ctx context.Context) ([]string, error) {
	return paramstore.GetList(ctx, c.getter, c.paramPrefix+"/twilio/recipients")
}

// Send delivers one SMS to the recipient.
func (c *Client) Send(ctx context.Context, recipient, text string) error {
	if strings.TrimSpace(recipient) == "" {
		return errors.New("twilio: recipient is required")
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("twilio: message body is required")
	}
	creds, sender, err := c.resolveCredentials(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, creds.SID)
	form := url.Values{
		"To":   {recipient},
		"From": {sender},
		"Body": {text},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(creds.SID, creds.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send to %q: %w", recipient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPStatusError{StatusCode: resp.StatusCode, URL: endpoint, Body: string(body)}
	}
	return nil
}

// resolveCredentials fetches the account credentials and sender number from
// SSM on the first call and returns the cached result on every subsequent
// call within the same process lifetime.
func (c *Client) resolveCredentials(ctx context.Context) (credentials, string, error) {
	c.credsOnce.Do(func() {
		var creds credentials
		if err := paramstore.GetJSON(ctx, c.getter, c.paramPrefix+"/twilio/credentials", &creds); err != nil {
			c.credsErr = err
			return
		}
		if creds.SID == "" || creds.AuthToken == "" {
			c.credsErr = errors.New("twilio: credentials parameter missing sid or auth_token")
			return
		}
		sender, err := c.getter.GetParameter(ctx, c.paramPrefix+"/twilio/sender_number")
		if err != nil {
			c.credsErr = err
			return
		}
		c.creds = creds
		c.sender = sender
	})
	return c.creds, c.sender, c.credsErr
}
