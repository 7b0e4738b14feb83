// Package session holds the single source of truth for who is signed in and
// with what bearer token, persisted across runs through a TokenStore.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/model"
)

// Snapshot is an immutable view of the session. The role, identity and token
// always agree: RoleNone means both identities are nil and the token is empty.
type Snapshot struct {
	Role   model.Role
	Player *model.Player
	Admin  *model.Admin
	Token  string
}

// LoginResult is the outcome of a login attempt. Failures carry a
// human-readable message only; no error escapes the store boundary.
type LoginResult struct {
	OK      bool
	Message string
}

// Config configures a Store
type Config struct {
	// BaseURL of the hunt API, including the /api prefix
	BaseURL string
	// Persist is where the bearer token survives across runs
	Persist TokenStore
	// HTTPClient optionally overrides the API client's transport
	HTTPClient *http.Client
}

// Store owns the authentication state for one client process. All methods
// are safe for concurrent use; network calls are issued outside the lock and
// their responses are applied only if no logout or newer login happened in
// between (generation check).
type Store struct {
	api     *client.Client
	persist TokenStore

	mu       sync.Mutex
	role     model.Role
	player   *model.Player
	admin    *model.Admin
	token    string
	gen      uint64
	restored bool
}

// NewStore creates an empty (anonymous) session store
func NewStore(cfg Config) *Store {
	s := &Store{
		persist: cfg.Persist,
		role:    model.RoleNone,
	}
	if s.persist == nil {
		s.persist = NewMemoryTokenStore()
	}
	opts := []client.Option{}
	if cfg.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(cfg.HTTPClient))
	}
	s.api = client.New(cfg.BaseURL, s, opts...)
	return s
}

// API returns the client bound to this store's token
func (s *Store) API() *client.Client {
	return s.api
}

// Token implements client.TokenSource
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Role returns the current session role
func (s *Store) Role() model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// Snapshot returns a consistent view of the session
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Role: s.role, Player: s.player, Admin: s.admin, Token: s.token}
}

// Restore validates a previously persisted token against the identity-check
// endpoint and populates the session on success. On any failure (network,
// non-2xx, malformed payload) the persisted token is cleared and the session
// stays anonymous; no error surfaces. Resolves at most once per store.
func (s *Store) Restore(ctx context.Context) model.Role {
	s.mu.Lock()
	if s.restored {
		role := s.role
		s.mu.Unlock()
		return role
	}
	s.restored = true
	gen := s.gen
	s.mu.Unlock()

	token, err := s.persist.Load()
	if err != nil || token == "" {
		return model.RoleNone
	}

	me, err := s.api.WithTokens(client.StaticToken(token)).Me(ctx)
	if err != nil {
		_ = s.persist.Clear()
		return model.RoleNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A login or logout won the race; its state stands.
		return s.role
	}
	switch {
	case me.User != nil:
		s.role = model.RolePlayer
		s.player = me.User
		s.admin = nil
		s.token = token
	case me.Admin != nil:
		s.role = model.RoleAdmin
		s.admin = me.Admin
		s.player = nil
		s.token = token
	default:
		_ = s.persist.Clear()
	}
	return s.role
}

// LoginPlayer authenticates by email or phone. At least one is required;
// when both are supplied email is the discriminator. On success the token is
// persisted and the session becomes a player session. A response arriving
// after a logout or a newer login is discarded.
func (s *Store) LoginPlayer(ctx context.Context, email, phone string) LoginResult {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return LoginResult{Message: "Email or phone number required"}
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.api.WithTokens(client.NoToken).Login(ctx, email, phone)
	if err != nil {
		return failureResult(err)
	}
	if resp.Token == "" || resp.User == nil {
		return LoginResult{Message: "Malformed login response"}
	}

	return s.apply(gen, resp.Token, func() {
		s.role = model.RolePlayer
		s.player = resp.User
		s.admin = nil
	})
}

// LoginAdmin authenticates an operator by username and password
func (s *Store) LoginAdmin(ctx context.Context, username, password string) LoginResult {
	if strings.TrimSpace(username) == "" || password == "" {
		return LoginResult{Message: "Username and password required"}
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.api.WithTokens(client.NoToken).AdminLogin(ctx, username, password)
	if err != nil {
		return failureResult(err)
	}
	if resp.Token == "" || resp.Admin == nil {
		return LoginResult{Message: "Malformed login response"}
	}

	return s.apply(gen, resp.Token, func() {
		s.role = model.RoleAdmin
		s.admin = resp.Admin
		s.player = nil
	})
}

// Logout clears the persisted token and resets the session immediately.
// No network call is made; it is idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.role = model.RoleNone
	s.player = nil
	s.admin = nil
	s.token = ""
	s.gen++
	s.mu.Unlock()

	_ = s.persist.Clear()
}

// apply commits a login response if the session has not moved on since the
// request was issued. The token is persisted before any state changes so a
// persistence failure leaves the prior session untouched.
func (s *Store) apply(gen uint64, token string, set func()) LoginResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return LoginResult{Message: "Login superseded by a newer session change"}
	}
	if err := s.persist.Save(token); err != nil {
		return LoginResult{Message: "Failed to persist session token"}
	}
	set()
	s.token = token
	s.gen++
	return LoginResult{OK: true}
}

func failureResult(err error) LoginResult {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return LoginResult{Message: apiErr.Message}
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return LoginResult{Message: "Network error"}
	}
	return LoginResult{Message: err.Error()}
}
