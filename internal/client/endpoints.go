package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cityhunt/cityhunt/internal/model"
)

// LoginResponse is the success shape of POST /auth/login
type LoginResponse struct {
	Token string        `json:"token"`
	User  *model.Player `json:"user"`
}

// AdminLoginResponse is the success shape of POST /auth/admin-login
type AdminLoginResponse struct {
	Token string       `json:"token"`
	Admin *model.Admin `json:"admin"`
}

// MeResponse is the success shape of GET /auth/me. Exactly one of User/Admin
// is set.
type MeResponse struct {
	User  *model.Player `json:"user,omitempty"`
	Admin *model.Admin  `json:"admin,omitempty"`
}

// CurrentStepResponse is the success shape of GET /hunt/current-step
type CurrentStepResponse struct {
	Completed bool            `json:"completed"`
	Message   string          `json:"message,omitempty"`
	Step      *model.Step     `json:"step,omitempty"`
	Progress  *model.Progress `json:"progress,omitempty"`
}

// RevealResponse is the success shape of POST /hunt/reveal-location
type RevealResponse struct {
	Revealed bool   `json:"revealed"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ScanResponse is the success shape of POST /hunt/scan-qr
type ScanResponse struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	NextStep      *model.Step `json:"next_step,omitempty"`
	CompletedHunt bool        `json:"completed_hunt,omitempty"`
}

// ProgressResponse is the success shape of GET /hunt/progress
type ProgressResponse struct {
	CurrentStep    int                  `json:"current_step"`
	TotalSteps     int                  `json:"total_steps"`
	CompletedCount int                  `json:"completed_count"`
	Steps          []model.StepProgress `json:"steps"`
	CompletedHunt  bool                 `json:"completed_hunt"`
}

// AdminUser is one row of GET /admin/users: a player plus derived stats
type AdminUser struct {
	model.Player
	CompletedCount     int              `json:"completed_count"`
	RevealedCount      int              `json:"revealed_count"`
	ProgressPercentage float64          `json:"progress_percentage"`
	LatestScan         *model.ScanEvent `json:"latest_scan,omitempty"`
}

// UsersResponse is the success shape of GET /admin/users
type UsersResponse struct {
	Users []AdminUser `json:"users"`
}

// StepStat is the per-step completion breakdown in GET /admin/stats
type StepStat struct {
	StepID         int     `json:"step_id"`
	StepName       string  `json:"step_name"`
	CompletedCount int     `json:"completed_count"`
	RevealedCount  int     `json:"revealed_count"`
	CompletionRate float64 `json:"completion_rate"`
}

// StatsResponse is the success shape of GET /admin/stats
type StatsResponse struct {
	TotalUsers      int        `json:"total_users"`
	TotalScans      int        `json:"total_scans"`
	SuccessfulScans int        `json:"successful_scans"`
	CompletedUsers  int        `json:"completed_users"`
	CompletionRate  float64    `json:"completion_rate"`
	StepStats       []StepStat `json:"step_stats"`
}

// EventsResponse is the success shape of GET /admin/events
type EventsResponse struct {
	Events []model.ScanEvent `json:"events"`
}

// AckResponse is the acknowledgement shape of the admin user mutations
type AckResponse struct {
	Message string        `json:"message"`
	User    *model.Player `json:"user,omitempty"`
}

// StepUpdateRequest is the body of PUT /admin/steps/:id
type StepUpdateRequest struct {
	QRCodeURL *string `json:"qr_code_url,omitempty"`
	QRValue   *string `json:"qr_code_value,omitempty"`
}

// StepResponse is the acknowledgement shape of PUT /admin/steps/:id
type StepResponse struct {
	Message string      `json:"message"`
	Step    *model.Step `json:"step"`
}

// EventFilter narrows the admin event feed
type EventFilter struct {
	UserID      string
	StepID      int
	SuccessOnly bool
	Limit       int
}

// Login authenticates a player by email or phone
func (c *Client) Login(ctx context.Context, email, phone string) (*LoginResponse, error) {
	req := map[string]string{}
	if email != "" {
		req["email"] = email
	}
	if phone != "" {
		req["phone"] = phone
	}
	var resp LoginResponse
	if err := c.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminLogin authenticates an operator
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminLoginResponse, error) {
	req := map[string]string{"username": username, "password": password}
	var resp AdminLoginResponse
	if err := c.Post(ctx, "/auth/admin-login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the identity behind the current token
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.Get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentStep returns the player's current clue and progress
func (c *Client) CurrentStep(ctx context.Context) (*CurrentStepResponse, error) {
	var resp CurrentStepResponse
	if err := c.Get(ctx, "/hunt/current-step", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevealLocation discloses the current step's location
func (c *Client) RevealLocation(ctx context.Context) (*RevealResponse, error) {
	var resp RevealResponse
	if err := c.Post(ctx, "/hunt/reveal-location", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanQR submits a decoded QR value for the current step
func (c *Client) ScanQR(ctx context.Context, qrValue string) (*ScanResponse, error) {
	req := map[string]string{"qr_value": qrValue}
	var resp ScanResponse
	if err := c.Post(ctx, "/hunt/scan-qr", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Progress returns the full per-step progress listing
func (c *Client) Progress(ctx context.Context) (*ProgressResponse, error) {
	var resp ProgressResponse
	if err := c.Get(ctx, "/hunt/progress", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminUsers lists all players with progress stats
func (c *Client) AdminUsers(ctx context.Context) (*UsersResponse, error) {
	var resp UsersResponse
	if err := c.Get(ctx, "/admin/users", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminStats returns hunt-wide statistics
func (c *Client) AdminStats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.Get(ctx, "/admin/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminEvents returns the scan event feed
func (c *Client) AdminEvents(ctx context.Context, filter EventFilter) (*EventsResponse, error) {
	q := url.Values{}
	if filter.UserID != "" {
		q.Set("user_id", filter.UserID)
	}
	if filter.StepID > 0 {
		q.Set("step_id", strconv.Itoa(filter.StepID))
	}
	if filter.SuccessOnly {
		q.Set("success_only", "true")
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/admin/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp EventsResponse
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetUser resets a player's progress to step one
func (c *Client) ResetUser(ctx context.Context, userID string) (*AckResponse, error) {
	var resp AckResponse
	if err := c.Post(ctx, fmt.Sprintf("/admin/user/%s/reset", url.PathEscape(userID)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SkipStep force-completes a player's current step
func (c *Client) SkipStep(ctx context.Context, userID string) (*AckResponse, error) {
	var resp AckResponse
	if err := c.Post(ctx, fmt.Sprintf("/admin/user/%s/skip-step", url.PathEscape(userID)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateStep changes a step's QR code value or poster URL
func (c *Client) UpdateStep(ctx context.Context, stepID int, req StepUpdateRequest) (*StepResponse, error) {
	var resp StepResponse
	if err := c.Put(ctx, fmt.Sprintf("/admin/steps/%d", stepID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
