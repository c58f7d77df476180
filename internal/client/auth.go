package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tasklist/internal/users"
)

// Signup creates a new account and stores the returned credentials.
func (c *Client) Signup(ctx context.Context, email, password string) (*users.User, error) {
	return c.authenticate(ctx, "/users", email, password)
}

// Login authenticates with existing credentials and stores the returned
// tokens, replacing any previous session.
func (c *Client) Login(ctx context.Context, email, password string) (*users.User, error) {
	return c.authenticate(ctx, "/users/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*users.User, error) {
	payload, err := json.Marshal(users.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	accessToken := resp.Header.Get(users.HeaderAccessToken)
	refreshToken := resp.Header.Get(users.HeaderRefreshToken)
	if accessToken == "" || refreshToken == "" {
		return nil, fmt.Errorf("client: auth response missing token headers")
	}

	var user users.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("client: decode auth response: %w", err)
	}

	c.setSession(user.ID.String(), accessToken, refreshToken)

	return &user, nil
}

// Logout revokes the current session on the server and clears the stored
// credentials. Local credentials are cleared even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	userID, refreshToken := c.userID, c.refreshToken
	c.mu.RUnlock()

	c.clearSession()

	if refreshToken == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/users/session", nil)
	if err != nil {
		return err
	}
	req.Header.Set(users.HeaderRefreshToken, refreshToken)
	req.Header.Set(users.HeaderUserID, userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// apiError turns an error response into a Go error, preferring the
// server's error message when the body carries one.
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("client: %s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("client: request failed with status %d", resp.StatusCode)
}
