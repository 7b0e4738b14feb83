package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/web/middleware"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
	"github.com/cityhunt/cityhunt/internal/web/templates"
)

// AuthHandler handles the login pages and session lifecycle
type AuthHandler struct {
	api   *client.Client
	store sessions.Store
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(api *client.Client, store sessions.Store) *AuthHandler {
	return &AuthHandler{
		api:   api,
		store: store,
	}
}

// LoginPage renders the player login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "login", templates.LoginData{
		PageData: templates.PageData{
			Title: "Login",
			Flash: middleware.GetFlash(r.Context()),
		},
	})
}

// Login handles the player login form
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, "Invalid form data", "", "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	phone := strings.TrimSpace(r.FormValue("phone"))

	if email == "" && phone == "" {
		h.renderLoginError(w, r, "Email or phone number required", email, phone)
		return
	}

	resp, err := h.api.WithTokens(client.NoToken).Login(r.Context(), email, phone)
	if err != nil {
		h.renderLoginError(w, r, loginErrorMessage(err), email, phone)
		return
	}

	sess := &sessions.Session{
		Token:   resp.Token,
		Role:    model.RolePlayer,
		Contact: resp.User.Contact(),
	}
	if !h.startSession(w, r, sess) {
		return
	}

	middleware.SetFlash(w, "success", "Welcome! Your first clue is ready.")
	http.Redirect(w, r, "/hunt", http.StatusSeeOther)
}

// AdminLoginPage renders the operator login page
func (h *AuthHandler) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "admin_login", templates.AdminLoginData{
		PageData: templates.PageData{
			Title: "Organizer Login",
			Flash: middleware.GetFlash(r.Context()),
		},
	})
}

// AdminLogin handles the operator login form
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderAdminLoginError(w, r, "Invalid form data", "")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderAdminLoginError(w, r, "Username and password required", username)
		return
	}

	resp, err := h.api.WithTokens(client.NoToken).AdminLogin(r.Context(), username, password)
	if err != nil {
		h.renderAdminLoginError(w, r, loginErrorMessage(err), username)
		return
	}

	sess := &sessions.Session{
		Token:    resp.Token,
		Role:     model.RoleAdmin,
		Username: resp.Admin.Username,
	}
	if !h.startSession(w, r, sess) {
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout revokes the session and sends the visitor back to the login page
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		_ = h.store.Delete(r.Context(), cookie.Value)
	}
	middleware.ClearSessionCookie(w)

	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) bool {
	id := sessions.NewID()
	if err := h.store.Save(r.Context(), id, sess); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	middleware.SetSessionCookie(w, id)
	return true
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, msg, email, phone string) {
	renderPage(w, r, "login", templates.LoginData{
		PageData: templates.PageData{Title: "Login"},
		Email:    email,
		Phone:    phone,
		Error:    msg,
	})
}

func (h *AuthHandler) renderAdminLoginError(w http.ResponseWriter, r *http.Request, msg, username string) {
	renderPage(w, r, "admin_login", templates.AdminLoginData{
		PageData: templates.PageData{Title: "Organizer Login"},
		Username: username,
		Error:    msg,
	})
}

func loginErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Network error"
}

func renderPage(w http.ResponseWriter, _ *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Render(w, page, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
