package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotPlayer        = errors.New("player session required")
	ErrNotAdmin         = errors.New("admin session required")

	// Hunt errors
	ErrStepNotFound = errors.New("step not found")
	ErrUserNotFound = errors.New("user not found")
	ErrHuntComplete = errors.New("hunt already complete")
)
