package users

import (
	"time"

	"github.com/google/uuid"

	"tasklist/internal/session"
)

// Header names for the two-token scheme. The user id travels alongside the
// refresh token because refresh tokens are only indexed per user, not
// globally.
const (
	HeaderAccessToken  = "x-access-token"
	HeaderRefreshToken = "x-refresh-token"
	HeaderUserID       = "_id"
)

// User is the identity record. The password hash and session set are never
// serialized into responses.
type User struct {
	ID           uuid.UUID         `json:"_id"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Sessions     []session.Session `json:"-"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// SignupRequest is the body for POST /users
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccessTokenResponse is the body returned by the token renewal endpoint
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}
