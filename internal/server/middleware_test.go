package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasklist/internal/session"
	"tasklist/internal/token"
	"tasklist/internal/users"
)

var testCodec = token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), time.Minute)

type stubManager struct {
	sessions map[string][]session.Session
	findErr  error
}

func (m *stubManager) Create(context.Context, string) (session.Session, error) {
	return session.Session{}, nil
}

func (m *stubManager) Find(_ context.Context, userID, tok string) (*session.Session, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, sess := range m.sessions[userID] {
		if sess.Token == tok {
			found := sess
			return &found, nil
		}
	}
	return nil, session.ErrSessionNotFound
}

func (m *stubManager) Revoke(context.Context, string, string) error { return nil }

func (m *stubManager) ListForUser(_ context.Context, userID string) ([]session.Session, error) {
	return m.sessions[userID], nil
}

type stubUserStore struct {
	users map[string]*users.User
}

func (s *stubUserStore) Create(context.Context, *users.User) error { return nil }

func (s *stubUserStore) GetByEmail(context.Context, string) (*users.User, error) {
	return nil, users.ErrUserNotFound
}

func (s *stubUserStore) GetByID(_ context.Context, userID string) (*users.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return user, nil
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	access, err := testCodec.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}

	var gotUserID string
	r := gin.New()
	r.GET("/lists", Authenticate(testCodec), func(c *gin.Context) {
		gotUserID = c.GetString("user_id")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/lists", nil)
	req.Header.Set(users.HeaderAccessToken, access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("user_id = %q", gotUserID)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)

	expired, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), time.Nanosecond).Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"malformed token", "not-a-token"},
		{"expired token", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerRan := false
			r := gin.New()
			r.GET("/lists", Authenticate(testCodec), func(c *gin.Context) {
				handlerRan = true
			})

			req := httptest.NewRequest(http.MethodGet, "/lists", nil)
			if tt.token != "" {
				req.Header.Set(users.HeaderAccessToken, tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if handlerRan {
				t.Error("handler ran behind a rejected token")
			}
		})
	}
}

func verifySessionRouter(manager session.Manager, store users.Store, onRequest func(*gin.Context)) *gin.Engine {
	r := gin.New()
	r.GET("/users/me/access-token", VerifySession(manager, store), func(c *gin.Context) {
		if onRequest != nil {
			onRequest(c)
		}
		c.Status(http.StatusOK)
	})
	return r
}

func sessionRequest(userID, refreshToken string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/users/me/access-token", nil)
	req.Header.Set(users.HeaderUserID, userID)
	req.Header.Set(users.HeaderRefreshToken, refreshToken)
	return req
}

func TestVerifySessionUnknownToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	manager := &stubManager{sessions: map[string][]session.Session{}}
	r := verifySessionRouter(manager, &stubUserStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest(uuid.NewString(), "never-issued"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

// A user id that is not a uuid must be rejected as an unknown session, not
// passed down to the store where it would fail as a query parameter.
func TestVerifySessionMalformedUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Any ledger lookup would surface as a 500 here, so a 401 proves the
	// request never reached the store
	manager := &stubManager{findErr: session.ErrPersistence}
	r := verifySessionRouter(manager, &stubUserStore{}, nil)

	for _, userID := range []string{"", "not-a-uuid", "5f0f3a1b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, sessionRequest(userID, "some-token"))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("_id %q: expected 401, got %d", userID, w.Code)
		}
	}
}

func TestVerifySessionExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.NewString()
	manager := &stubManager{sessions: map[string][]session.Session{
		userID: {{Token: "stale", ExpiresAt: time.Now().Add(-time.Hour).Unix()}},
	}}
	r := verifySessionRouter(manager, &stubUserStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest(userID, "stale"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

// Only the presented session decides the outcome: other expired entries on
// the same user must not reject the request.
func TestVerifySessionIgnoresOtherExpiredSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	manager := &stubManager{sessions: map[string][]session.Session{
		userID.String(): {
			{Token: "stale-1", ExpiresAt: time.Now().Add(-time.Hour).Unix()},
			{Token: "live", ExpiresAt: time.Now().Add(time.Hour).Unix()},
			{Token: "stale-2", ExpiresAt: time.Now().Add(-2 * time.Hour).Unix()},
		},
	}}
	store := &stubUserStore{users: map[string]*users.User{
		userID.String(): {ID: userID, Email: "jeremy@example.com"},
	}}

	var gotUser *users.User
	var gotRefresh string
	r := verifySessionRouter(manager, store, func(c *gin.Context) {
		if u, ok := c.Get("user"); ok {
			gotUser = u.(*users.User)
		}
		gotRefresh = c.GetString("refresh_token")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest(userID.String(), "live"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotRefresh != "live" {
		t.Errorf("refresh_token = %q", gotRefresh)
	}
	if gotUser == nil {
		t.Fatal("user not bound into context")
	}
	if len(gotUser.Sessions) != 3 {
		t.Errorf("expected all 3 ledger entries hydrated, got %d", len(gotUser.Sessions))
	}
}

func TestVerifySessionUserGone(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.NewString()
	manager := &stubManager{sessions: map[string][]session.Session{
		userID: {{Token: "live", ExpiresAt: time.Now().Add(time.Hour).Unix()}},
	}}
	r := verifySessionRouter(manager, &stubUserStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest(userID, "live"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestVerifySessionLedgerFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	manager := &stubManager{findErr: session.ErrPersistence}
	r := verifySessionRouter(manager, &stubUserStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, sessionRequest(uuid.NewString(), "live"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
