// Package sessions stores browser sessions for the web gateway. A session
// binds a cookie id to the API bearer token and the role it resolved to.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/cityhunt/cityhunt/internal/model"
)

// ErrNotFound is returned when a session id has no stored session
var ErrNotFound = errors.New("session not found")

// Session is the server-side state behind one browser cookie
type Session struct {
	Token string     `json:"token"`
	Role  model.Role `json:"role"`

	// Display identity cached at login time so pages can render a name
	// without an extra API round trip
	Contact  string `json:"contact,omitempty"`
	Username string `json:"username,omitempty"`
}

// Store persists browser sessions
type Store interface {
	Save(ctx context.Context, id string, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID generates an opaque session id
func NewID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
