// Package client is a Go client for the task list API. It holds the user's
// credentials and transparently renews the short-lived access token: when a
// request comes back 401, the client refreshes the token once and replays
// the request. Concurrent renewals collapse into a single refresh call.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tasklist/internal/users"
)

var (
	// ErrNotAuthenticated is returned when no credentials are stored.
	ErrNotAuthenticated = errors.New("client: not authenticated")

	// ErrSessionExpired is returned when the server rejects the refresh
	// token. The stored credentials are cleared and the user must log in
	// again.
	ErrSessionExpired = errors.New("client: session expired")
)

// DefaultRefreshTimeout bounds a token renewal call. Renewal runs on a
// detached context, so this is its only deadline.
const DefaultRefreshTimeout = 15 * time.Second

// Client talks to the task list API on behalf of a single user.
// It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	refreshTimeout time.Duration

	mu           sync.RWMutex
	userID       string
	accessToken  string
	refreshToken string

	refresh singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRefreshTimeout overrides the token renewal deadline.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) { c.refreshTimeout = d }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		http:           &http.Client{Timeout: 30 * time.Second},
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns the currently stored access token, if any.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// UserID returns the id of the logged-in user, if any.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) setSession(userID, accessToken, refreshToken string) {
	c.mu.Lock()
	c.userID = userID
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.mu.Unlock()
}

func (c *Client) clearSession() {
	c.setSession("", "", "")
}

// do sends an authenticated request. A 401 response triggers exactly one
// token renewal followed by one replay; a second 401 is returned as-is.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.mu.RLock()
	access, refresh := c.accessToken, c.refreshToken
	c.mu.RUnlock()

	if refresh == "" {
		return nil, ErrNotAuthenticated
	}
	if access == "" {
		var err error
		if access, err = c.refreshAccessToken(); err != nil {
			return nil, err
		}
	}

	req.Header.Set(users.HeaderAccessToken, access)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	access, err = c.refreshAccessToken()
	if err != nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	retry.Header.Set(users.HeaderAccessToken, access)

	return c.http.Do(retry)
}

// refreshAccessToken renews the access token using the stored refresh
// token. Concurrent callers share a single in-flight renewal and all
// receive its result. A rejected refresh token clears the stored
// credentials so no further requests are attempted with them.
func (c *Client) refreshAccessToken() (string, error) {
	v, err, _ := c.refresh.Do("access-token", func() (any, error) {
		c.mu.RLock()
		userID, refreshToken := c.userID, c.refreshToken
		c.mu.RUnlock()

		if refreshToken == "" {
			return nil, ErrNotAuthenticated
		}

		// Detached from any single caller: a cancelled request must not
		// abort a renewal other callers are waiting on.
		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me/access-token", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(users.HeaderRefreshToken, refreshToken)
		req.Header.Set(users.HeaderUserID, userID)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			c.clearSession()
			return nil, ErrSessionExpired
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("client: token renewal failed with status %d", resp.StatusCode)
		}

		token := resp.Header.Get(users.HeaderAccessToken)
		if token == "" {
			var body users.AccessTokenResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return nil, fmt.Errorf("client: decode renewal response: %w", err)
			}
			token = body.AccessToken
		}
		if token == "" {
			return nil, errors.New("client: renewal response carried no access token")
		}

		c.mu.Lock()
		if c.refreshToken == "" {
			// A logout raced the renewal and wins.
			c.mu.Unlock()
			return nil, ErrNotAuthenticated
		}
		c.accessToken = token
		c.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
