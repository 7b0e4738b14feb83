package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/web/middleware"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
	"github.com/cityhunt/cityhunt/internal/web/templates"
)

// AdminHandler serves the operator dashboard
type AdminHandler struct {
	api   *client.Client
	store sessions.Store
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(api *client.Client, store sessions.Store) *AdminHandler {
	return &AdminHandler{
		api:   api,
		store: store,
	}
}

func (h *AdminHandler) apiFor(sess *sessions.Session) *client.Client {
	return h.api.WithTokens(client.StaticToken(sess.Token))
}

// View renders the dashboard with player progress and hunt stats
func (h *AdminHandler) View(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	api := h.apiFor(sess)

	users, err := api.AdminUsers(r.Context())
	if err != nil {
		if isAuthFailure(err) {
			endSession(w, r, h.store)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	stats, err := api.AdminStats(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderPage(w, r, "admin", templates.AdminData{
		PageData: templates.PageData{
			Title: "Dashboard",
			Flash: middleware.GetFlash(r.Context()),
		},
		Username: sess.Username,
		Users:    users.Users,
		Stats:    stats,
	})
}

// ResetUser resets a player's progress back to the first step
func (h *AdminHandler) ResetUser(w http.ResponseWriter, r *http.Request) {
	h.mutateUser(w, r, func(api *client.Client, userID string) (string, error) {
		resp, err := api.ResetUser(r.Context(), userID)
		if err != nil {
			return "", err
		}
		return resp.Message, nil
	})
}

// SkipStep force-completes a player's current step
func (h *AdminHandler) SkipStep(w http.ResponseWriter, r *http.Request) {
	h.mutateUser(w, r, func(api *client.Client, userID string) (string, error) {
		resp, err := api.SkipStep(r.Context(), userID)
		if err != nil {
			return "", err
		}
		return resp.Message, nil
	})
}

func (h *AdminHandler) mutateUser(w http.ResponseWriter, r *http.Request, op func(*client.Client, string) (string, error)) {
	sess := middleware.GetSession(r.Context())
	userID := mux.Vars(r)["id"]

	msg, err := op(h.apiFor(sess), userID)
	if err != nil {
		if isAuthFailure(err) {
			endSession(w, r, h.store)
			return
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			middleware.SetFlash(w, "error", apiErr.Message)
		} else {
			middleware.SetFlash(w, "error", "Network error")
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	middleware.SetFlash(w, "success", msg)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
