package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

const (
	pollBaseDelay  = time.Second
	pollBackoff    = 1.2
	pollMaxDelay   = 10 * time.Second
	pollMaxAttempts = 150
	pollMaxFailures = 3
)

// Client talks to Cursor's auth sidecar endpoints.
type Client struct {
	APIBase string
	HTTP    *http.Client
}

func NewClient(apiBase string) *Client {
	return &Client{APIBase: apiBase, HTTP: http.DefaultClient}
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Poll repeatedly checks /auth/poll until the user completes the login
// flow, pending (404) is treated as "keep waiting", and non-404 failures
// abort after three consecutive occurrences. Returns nil, nil on timeout
// or abort rather than an error, matching the "poll degrades to null"
// design.
func (c *Client) Poll(ctx context.Context, start PKCEStart) (*TokenPair, error) {
	delay := pollBaseDelay
	consecutiveFailures := 0

	for attempt := 0; attempt < pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(delay):
		}

		u := fmt.Sprintf("%s/auth/poll?uuid=%s&verifier=%s",
			c.APIBase, url.QueryEscape(start.UUID), url.QueryEscape(start.Verifier))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("auth: build poll request: %w", err)
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			consecutiveFailures++
			if consecutiveFailures >= pollMaxFailures {
				return nil, nil
			}
			delay = nextDelay(delay)
			continue
		}

		status := resp.StatusCode
		var body authResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		switch {
		case status == http.StatusNotFound:
			consecutiveFailures = 0
			delay = nextDelay(delay)
			continue
		case status == http.StatusOK && decodeErr == nil && body.AccessToken != "":
			return &TokenPair{
				AccessToken:  body.AccessToken,
				RefreshToken: body.RefreshToken,
				ExpiresAtMs:  ExpiresAtFromAccessToken(body.AccessToken),
			}, nil
		default:
			consecutiveFailures++
			if consecutiveFailures >= pollMaxFailures {
				return nil, nil
			}
			delay = nextDelay(delay)
		}
	}
	return nil, nil
}

func nextDelay(d time.Duration) time.Duration {
	next := time.Duration(math.Round(float64(d) * pollBackoff))
	if next > pollMaxDelay {
		return pollMaxDelay
	}
	return next
}

// ExchangeAPIKey trades a long-lived Cursor API key for an access/refresh
// token pair.
func (c *Client) ExchangeAPIKey(ctx context.Context, apiKey string) (*TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/auth/exchange_user_api_key", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: build exchange request: %w", err)
	}
	req.Header.Set("authorization", "Bearer "+apiKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: exchange_user_api_key: %w", err)
	}
	defer resp.Body.Close()

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: exchange_user_api_key returned status %d", resp.StatusCode)
	}
	return &TokenPair{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAtMs:  ExpiresAtFromAccessToken(body.AccessToken),
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/auth/refresh", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: build refresh request: %w", err)
	}
	req.Header.Set("authorization", "Bearer "+refreshToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: refresh: %w", err)
	}
	defer resp.Body.Close()

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: refresh returned status %d", resp.StatusCode)
	}
	return &TokenPair{
		AccessToken:  body.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAtMs:  ExpiresAtFromAccessToken(body.AccessToken),
	}, nil
}
