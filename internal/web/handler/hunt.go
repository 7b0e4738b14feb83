package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/web/middleware"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
	"github.com/cityhunt/cityhunt/internal/web/templates"
)

// HuntHandler serves the player's hunt screen
type HuntHandler struct {
	api   *client.Client
	store sessions.Store
}

// NewHuntHandler creates a new HuntHandler
func NewHuntHandler(api *client.Client, store sessions.Store) *HuntHandler {
	return &HuntHandler{
		api:   api,
		store: store,
	}
}

func (h *HuntHandler) apiFor(sess *sessions.Session) *client.Client {
	return h.api.WithTokens(client.StaticToken(sess.Token))
}

// endSession tears down a browser session whose API token no longer works
func endSession(w http.ResponseWriter, r *http.Request, store sessions.Store) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		_ = store.Delete(r.Context(), cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	middleware.SetFlash(w, "error", "Your session has expired. Please log in again.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// isAuthFailure reports whether an API error means the token is dead
func isAuthFailure(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// View renders the current clue, progress, and scan form
func (h *HuntHandler) View(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	api := h.apiFor(sess)

	current, err := api.CurrentStep(r.Context())
	if err != nil {
		if isAuthFailure(err) {
			endSession(w, r, h.store)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := templates.HuntData{
		PageData: templates.PageData{
			Title: "Hunt",
			Flash: middleware.GetFlash(r.Context()),
		},
		Contact:   sess.Contact,
		Completed: current.Completed,
		Step:      current.Step,
		Progress:  current.Progress,
	}

	// The location name is not part of the step payload once revealed, so
	// re-ask the API; the reveal endpoint records each step at most once
	if current.Step != nil && current.Progress != nil && current.Progress.Revealed(current.Step.ID) {
		if reveal, err := api.RevealLocation(r.Context()); err == nil {
			data.RevealedLocation = reveal.Location
		}
	}

	renderPage(w, r, "hunt", data)
}

// Reveal discloses the current step's location
func (h *HuntHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	resp, err := h.apiFor(sess).RevealLocation(r.Context())
	if err != nil {
		if isAuthFailure(err) {
			endSession(w, r, h.store)
			return
		}
		middleware.SetFlash(w, "error", "Could not reveal the location. Try again.")
		http.Redirect(w, r, "/hunt", http.StatusSeeOther)
		return
	}

	middleware.SetFlash(w, "info", resp.Message)
	http.Redirect(w, r, "/hunt", http.StatusSeeOther)
}

// Scan submits a manually entered QR code value
func (h *HuntHandler) Scan(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/hunt", http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		middleware.SetFlash(w, "error", "Enter the code printed under the QR poster")
		http.Redirect(w, r, "/hunt", http.StatusSeeOther)
		return
	}

	resp, err := h.apiFor(sess).ScanQR(r.Context(), code)
	if err != nil {
		if isAuthFailure(err) {
			endSession(w, r, h.store)
			return
		}
		middleware.SetFlash(w, "error", "Could not submit the code. Try again.")
		http.Redirect(w, r, "/hunt", http.StatusSeeOther)
		return
	}

	if resp.Success {
		middleware.SetFlash(w, "success", resp.Message)
	} else {
		middleware.SetFlash(w, "error", resp.Message)
	}
	http.Redirect(w, r, "/hunt", http.StatusSeeOther)
}
