package model

// Role is the authenticated role of a session
type Role string

const (
	// RoleNone is the anonymous state (no identity, no token)
	RoleNone Role = "none"
	// RolePlayer is a hunt participant authenticated by email or phone
	RolePlayer Role = "player"
	// RoleAdmin is an operator authenticated by username and password
	RoleAdmin Role = "admin"
)

// Player is a hunt participant identity as returned by the API.
// Exactly one of Email/Phone is the login discriminator; both may be set.
type Player struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CurrentStep int    `json:"current_step,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastActive  string `json:"last_active,omitempty"`

	CompletedSteps    []int `json:"completed_steps,omitempty"`
	RevealedLocations []int `json:"revealed_locations,omitempty"`
}

// Contact returns whichever of email/phone identifies the player
func (p Player) Contact() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Phone
}

// Admin is an operator identity as returned by the API
type Admin struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
