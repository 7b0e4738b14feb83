// Package web is the server-rendered gateway in front of the hunt API
package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/web/handler"
	"github.com/cityhunt/cityhunt/internal/web/middleware"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger   *slog.Logger
	API      *client.Client
	Sessions sessions.Store
}

// NewRouter creates the gateway router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.ResolveSession(cfg.Sessions))

	authHandler := handler.NewAuthHandler(cfg.API, cfg.Sessions)
	huntHandler := handler.NewHuntHandler(cfg.API, cfg.Sessions)
	adminHandler := handler.NewAdminHandler(cfg.API, cfg.Sessions)

	// Landing redirect by role
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, middleware.HomeFor(middleware.RoleOf(req.Context())), http.StatusSeeOther)
	}).Methods(http.MethodGet)

	// Login pages: only reachable while anonymous
	anon := r.NewRoute().Subrouter()
	anon.Use(middleware.Flash())
	anon.Use(middleware.RequireAnonymous())
	anon.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	anon.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	anon.HandleFunc("/admin/login", authHandler.AdminLoginPage).Methods(http.MethodGet)
	anon.HandleFunc("/admin/login", authHandler.AdminLogin).Methods(http.MethodPost)

	r.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Player routes
	player := r.NewRoute().Subrouter()
	player.Use(middleware.Flash())
	player.Use(middleware.RequireRole(model.RolePlayer))
	player.HandleFunc("/hunt", huntHandler.View).Methods(http.MethodGet)
	player.HandleFunc("/hunt/reveal", huntHandler.Reveal).Methods(http.MethodPost)
	player.HandleFunc("/hunt/scan", huntHandler.Scan).Methods(http.MethodPost)

	// Admin routes
	admin := r.NewRoute().Subrouter()
	admin.Use(middleware.Flash())
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.HandleFunc("/admin", adminHandler.View).Methods(http.MethodGet)
	admin.HandleFunc("/admin/user/{id}/reset", adminHandler.ResetUser).Methods(http.MethodPost)
	admin.HandleFunc("/admin/user/{id}/skip", adminHandler.SkipStep).Methods(http.MethodPost)

	return r
}
