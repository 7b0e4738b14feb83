package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"

	// SessionCookie is the browser session cookie name
	SessionCookie = "session"
)

// GetSession retrieves the resolved browser session from the request context.
// Returns nil for anonymous requests.
func GetSession(ctx context.Context) *sessions.Session {
	sess, _ := ctx.Value(sessionContextKey).(*sessions.Session)
	return sess
}

// RoleOf returns the role of the request, RoleNone when anonymous
func RoleOf(ctx context.Context) model.Role {
	if sess := GetSession(ctx); sess != nil {
		return sess.Role
	}
	return model.RoleNone
}

// SetSessionCookie writes the browser session cookie
func SetSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the browser session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ResolveSession returns middleware that looks up the session cookie and, if
// it resolves, puts the session on the context. A cookie that no longer
// resolves is cleared and the request proceeds as anonymous.
func ResolveSession(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HomeFor maps a role to its landing page
func HomeFor(role model.Role) string {
	switch role {
	case model.RolePlayer:
		return "/hunt"
	case model.RoleAdmin:
		return "/admin"
	default:
		return "/login"
	}
}

// RequireRole returns middleware that only lets the given role through.
// Any other role is redirected to its own landing page.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := RoleOf(r.Context()); got != role {
				http.Redirect(w, r, HomeFor(got), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnonymous returns middleware for the login pages: authenticated
// visitors are sent to their landing page instead.
func RequireAnonymous() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role := RoleOf(r.Context()); role != model.RoleNone {
				http.Redirect(w, r, HomeFor(role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
