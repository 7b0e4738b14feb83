// Package hunttest is an in-memory implementation of the hunt API contract.
// It backs the dev server and the test suites of the client packages; the
// real backend it mimics is a separate deployment.
package hunttest

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/cityhunt/cityhunt/internal/middleware"
	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/testutil"
)

// DefaultAdminUsername and DefaultAdminPassword seed the one operator account
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "hunt-admin-2024"
)

// user is a hunt participant record
type user struct {
	ID         string
	Email      string
	Phone      string
	Current    int
	Completed  []int
	Revealed   []int
	CreatedAt  time.Time
	LastActive time.Time
}

func (u *user) player() *model.Player {
	return &model.Player{
		ID:                u.ID,
		Email:             u.Email,
		Phone:             u.Phone,
		CurrentStep:       u.Current,
		CompletedSteps:    slices.Clone(u.Completed),
		RevealedLocations: slices.Clone(u.Revealed),
		CreatedAt:         u.CreatedAt.UTC().Format(time.RFC3339),
		LastActive:        u.LastActive.UTC().Format(time.RFC3339),
	}
}

func (u *user) completedHunt() bool {
	return len(u.Completed) >= model.TotalSteps
}

// event is a recorded scan attempt
type event struct {
	ID            int
	UserID        string
	StepID        int
	Success       bool
	RevealedFirst bool
	ScannedAt     time.Time
}

type tokenInfo struct {
	subjectID string
	admin     bool
}

// Server holds the in-memory hunt state
type Server struct {
	logger *slog.Logger
	now    func() time.Time

	adminID   string
	adminUser string
	adminHash []byte

	mu      sync.Mutex
	steps   map[int]*model.Step
	users   map[string]*user
	byEmail map[string]string
	byPhone map[string]string
	tokens  map[string]tokenInfo
	events  []*event
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the time source for deterministic tests
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAdmin overrides the seeded operator credentials
func WithAdmin(username, password string) Option {
	return func(s *Server) {
		s.adminUser = username
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		s.adminHash = hash
	}
}

// New creates a server seeded with the 13-step itinerary and one admin
func New(opts ...Option) *Server {
	s := &Server{
		logger:  testutil.NopLogger(),
		now:     time.Now,
		adminID: uuid.NewString(),
		steps:   make(map[int]*model.Step),
		users:   make(map[string]*user),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
		tokens:  make(map[string]tokenInfo),
	}
	WithAdmin(DefaultAdminUsername, DefaultAdminPassword)(s)

	for _, step := range SeedSteps() {
		copied := step
		s.steps[step.ID] = &copied
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the /api contract
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(s.logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(s.logger))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/admin-login", s.handleAdminLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	api.HandleFunc("/hunt/current-step", s.requirePlayer(s.handleCurrentStep)).Methods(http.MethodGet)
	api.HandleFunc("/hunt/scan-qr", s.requirePlayer(s.handleScanQR)).Methods(http.MethodPost)
	api.HandleFunc("/hunt/reveal-location", s.requirePlayer(s.handleReveal)).Methods(http.MethodPost)
	api.HandleFunc("/hunt/progress", s.requirePlayer(s.handleProgress)).Methods(http.MethodGet)

	api.HandleFunc("/admin/users", s.requireAdmin(s.handleUsers)).Methods(http.MethodGet)
	api.HandleFunc("/admin/stats", s.requireAdmin(s.handleStats)).Methods(http.MethodGet)
	api.HandleFunc("/admin/events", s.requireAdmin(s.handleEvents)).Methods(http.MethodGet)
	api.HandleFunc("/admin/user/{id}/reset", s.requireAdmin(s.handleReset)).Methods(http.MethodPost)
	api.HandleFunc("/admin/user/{id}/skip-step", s.requireAdmin(s.handleSkipStep)).Methods(http.MethodPost)
	api.HandleFunc("/admin/steps/{id}", s.requireAdmin(s.handleUpdateStep)).Methods(http.MethodPut)

	return r
}

// TokenFor mints a player token directly, letting tests skip the login call
func (s *Server) TokenFor(email, phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findOrCreateUser(email, phone)
	return s.issueToken(u.ID, false)
}

// AdminToken mints an operator token directly
func (s *Server) AdminToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(s.adminID, true)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func (s *Server) issueToken(subjectID string, admin bool) string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	token := "tok_" + base64.RawURLEncoding.EncodeToString(b)
	s.tokens[token] = tokenInfo{subjectID: subjectID, admin: admin}
	return token
}

func (s *Server) findOrCreateUser(email, phone string) *user {
	if email != "" {
		if id, ok := s.byEmail[email]; ok {
			return s.users[id]
		}
	} else if phone != "" {
		if id, ok := s.byPhone[phone]; ok {
			return s.users[id]
		}
	}

	now := s.now()
	u := &user{
		ID:         uuid.NewString(),
		Email:      email,
		Phone:      phone,
		Current:    1,
		Completed:  []int{},
		Revealed:   []int{},
		CreatedAt:  now,
		LastActive: now,
	}
	if email != "" {
		s.byEmail[email] = u.ID
	}
	if phone != "" {
		s.byPhone[phone] = u.ID
	}
	s.users[u.ID] = u
	return u
}

// requirePlayer gates a handler behind a player bearer token
func (s *Server) requirePlayer(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		info, ok := s.tokens[token]
		if !ok || info.admin {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		u, ok := s.users[info.subjectID]
		if !ok {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		next(w, r, u)
	}
}

// requireAdmin gates a handler behind an operator bearer token
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		s.mu.Lock()
		info, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok || !info.admin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Email == "" && body.Phone == "" {
		writeError(w, http.StatusBadRequest, "Email or phone number required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findOrCreateUser(body.Email, body.Phone)
	u.LastActive = s.now()
	token := s.issueToken(u.ID, false)

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u.player(),
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	if body.Username != s.adminUser ||
		bcrypt.CompareHashAndPassword(s.adminHash, []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.mu.Lock()
	token := s.issueToken(s.adminID, true)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"admin": &model.Admin{ID: s.adminID, Username: s.adminUser},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.tokens[token]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if info.admin {
		writeJSON(w, http.StatusOK, map[string]any{
			"admin": &model.Admin{ID: s.adminID, Username: s.adminUser},
		})
		return
	}

	u, ok := s.users[info.subjectID]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.player()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// stepForPlayer strips the QR value from a step payload
func stepForPlayer(step *model.Step) *model.Step {
	return &model.Step{
		ID:        step.ID,
		Name:      step.Name,
		Clue:      step.Clue,
		QRCodeURL: step.QRCodeURL,
	}
}

func (s *Server) progressFor(u *user) *model.Progress {
	return &model.Progress{
		Current:           u.Current,
		Total:             model.TotalSteps,
		CompletedSteps:    slices.Clone(u.Completed),
		RevealedLocations: slices.Clone(u.Revealed),
	}
}

func (s *Server) handleCurrentStep(w http.ResponseWriter, _ *http.Request, u *user) {
	if u.completedHunt() {
		writeJSON(w, http.StatusOK, map[string]any{
			"completed": true,
			"message":   "Congratulations! You have completed the scavenger hunt!",
		})
		return
	}

	step, ok := s.steps[u.Current]
	if !ok {
		writeError(w, http.StatusNotFound, "Step not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"step":     stepForPlayer(step),
		"progress": s.progressFor(u),
	})
}

func (s *Server) handleScanQR(w http.ResponseWriter, r *http.Request, u *user) {
	var body struct {
		QRValue string `json:"qr_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.QRValue == "" {
		writeError(w, http.StatusBadRequest, "QR value required")
		return
	}

	step, ok := s.steps[u.Current]
	if !ok {
		writeError(w, http.StatusNotFound, "Current step not found")
		return
	}

	success := body.QRValue == step.QRValue
	s.events = append(s.events, &event{
		ID:            len(s.events) + 1,
		UserID:        u.ID,
		StepID:        u.Current,
		Success:       success,
		RevealedFirst: slices.Contains(u.Revealed, u.Current),
		ScannedAt:     s.now(),
	})

	if !success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Wrong location – try again!",
		})
		return
	}

	if !slices.Contains(u.Completed, u.Current) {
		u.Completed = append(u.Completed, u.Current)
	}
	if u.Current < model.TotalSteps {
		u.Current++
	}
	u.LastActive = s.now()

	resp := map[string]any{
		"success": true,
		"message": "Correct! Moving to next clue.",
	}
	if u.completedHunt() {
		resp["completed_hunt"] = true
	} else if next, ok := s.steps[u.Current]; ok {
		resp["next_step"] = stepForPlayer(next)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReveal(w http.ResponseWriter, _ *http.Request, u *user) {
	step, ok := s.steps[u.Current]
	if !ok {
		writeError(w, http.StatusNotFound, "Step not found")
		return
	}

	if !slices.Contains(u.Revealed, u.Current) {
		u.Revealed = append(u.Revealed, u.Current)
	}
	u.LastActive = s.now()

	writeJSON(w, http.StatusOK, map[string]any{
		"revealed": true,
		"location": step.Name,
		"message":  "Location revealed: " + step.Name,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request, u *user) {
	steps := make([]model.StepProgress, 0, model.TotalSteps)
	for id := 1; id <= model.TotalSteps; id++ {
		step, ok := s.steps[id]
		if !ok {
			continue
		}

		row := model.StepProgress{
			ID:        id,
			Name:      step.Name,
			Completed: slices.Contains(u.Completed, id),
			Revealed:  slices.Contains(u.Revealed, id),
			Current:   id == u.Current,
		}
		// Clues stay hidden for steps the player has not reached
		if row.Current || row.Completed {
			row.Clue = step.Clue
		}
		steps = append(steps, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"current_step":    u.Current,
		"total_steps":     model.TotalSteps,
		"completed_count": len(u.Completed),
		"steps":           steps,
		"completed_hunt":  u.completedHunt(),
	})
}

func (s *Server) latestEvent(userID string) *event {
	var latest *event
	for _, ev := range s.events {
		if ev.UserID == userID && (latest == nil || ev.ScannedAt.After(latest.ScannedAt)) {
			latest = ev
		}
	}
	return latest
}

func (s *Server) eventJSON(ev *event, enrich bool) map[string]any {
	out := map[string]any{
		"id":             ev.ID,
		"user_id":        ev.UserID,
		"step_id":        ev.StepID,
		"success":        ev.Success,
		"revealed_first": ev.RevealedFirst,
		"scanned_at":     ev.ScannedAt.UTC().Format(time.RFC3339),
	}
	if enrich {
		if u, ok := s.users[ev.UserID]; ok {
			out["user_email"] = u.Email
			out["user_phone"] = u.Phone
		}
		if step, ok := s.steps[ev.StepID]; ok {
			out["step_name"] = step.Name
		}
	}
	return out
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]map[string]any, 0, len(s.users))
	for _, u := range s.users {
		row := map[string]any{
			"id":                  u.ID,
			"email":               u.Email,
			"phone":               u.Phone,
			"current_step":        u.Current,
			"completed_steps":     slices.Clone(u.Completed),
			"revealed_locations":  slices.Clone(u.Revealed),
			"created_at":          u.CreatedAt.UTC().Format(time.RFC3339),
			"last_active":         u.LastActive.UTC().Format(time.RFC3339),
			"completed_count":     len(u.Completed),
			"revealed_count":      len(u.Revealed),
			"progress_percentage": float64(len(u.Completed)) / model.TotalSteps * 100,
		}
		if latest := s.latestEvent(u.ID); latest != nil {
			row["latest_scan"] = s.eventJSON(latest, false)
		}
		users = append(users, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totalUsers := len(s.users)
	totalScans := len(s.events)
	successfulScans := 0
	for _, ev := range s.events {
		if ev.Success {
			successfulScans++
		}
	}
	completedUsers := 0
	for _, u := range s.users {
		if u.completedHunt() {
			completedUsers++
		}
	}

	completionRate := 0.0
	if totalUsers > 0 {
		completionRate = float64(completedUsers) / float64(totalUsers) * 100
	}

	stepStats := make([]map[string]any, 0, model.TotalSteps)
	for id := 1; id <= model.TotalSteps; id++ {
		step, ok := s.steps[id]
		if !ok {
			continue
		}
		completed, revealed := 0, 0
		for _, u := range s.users {
			if slices.Contains(u.Completed, id) {
				completed++
			}
			if slices.Contains(u.Revealed, id) {
				revealed++
			}
		}
		rate := 0.0
		if totalUsers > 0 {
			rate = float64(completed) / float64(totalUsers) * 100
		}
		stepStats = append(stepStats, map[string]any{
			"step_id":         id,
			"step_name":       step.Name,
			"completed_count": completed,
			"revealed_count":  revealed,
			"completion_rate": rate,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":      totalUsers,
		"total_scans":      totalScans,
		"successful_scans": successfulScans,
		"completed_users":  completedUsers,
		"completion_rate":  completionRate,
		"step_stats":       stepStats,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	stepID, _ := strconv.Atoi(q.Get("step_id"))
	successOnly := q.Get("success_only") == "true"
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]map[string]any, 0)
	// Newest first
	for i := len(s.events) - 1; i >= 0 && len(events) < limit; i-- {
		ev := s.events[i]
		if userID != "" && ev.UserID != userID {
			continue
		}
		if stepID > 0 && ev.StepID != stepID {
			continue
		}
		if successOnly && !ev.Success {
			continue
		}
		events = append(events, s.eventJSON(ev, true))
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	u.Current = 1
	u.Completed = []int{}
	u.Revealed = []int{}
	u.LastActive = s.now()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User progress reset successfully",
		"user":    u.player(),
	})
}

func (s *Server) handleSkipStep(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if u.completedHunt() {
		writeError(w, http.StatusBadRequest, "User has already completed all steps")
		return
	}

	skipped := u.Current
	if !slices.Contains(u.Completed, skipped) {
		u.Completed = append(u.Completed, skipped)
	}
	if u.Current < model.TotalSteps {
		u.Current++
	}
	u.LastActive = s.now()

	s.events = append(s.events, &event{
		ID:        len(s.events) + 1,
		UserID:    u.ID,
		StepID:    skipped,
		Success:   true,
		ScannedAt: s.now(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Step skipped successfully",
		"user":    u.player(),
	})
}

func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid step id")
		return
	}

	var body struct {
		QRCodeURL *string `json:"qr_code_url"`
		QRValue   *string `json:"qr_code_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	step, ok := s.steps[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Step not found")
		return
	}

	if body.QRCodeURL != nil {
		step.QRCodeURL = *body.QRCodeURL
	}
	if body.QRValue != nil {
		step.QRValue = *body.QRValue
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Step updated successfully",
		"step":    step,
	})
}
