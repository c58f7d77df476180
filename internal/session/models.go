package session

import "time"

// Session is one refresh token plus its expiry, representing a single
// logged-in device or browser. A user may hold any number of concurrent
// sessions.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expiresAt"`
	CreatedAt time.Time `json:"-"`
}
