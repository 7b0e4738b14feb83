package model

// TotalSteps is the fixed length of the hunt itinerary
const TotalSteps = 13

// Step is one position in the itinerary. The QR value is only present on
// admin-facing payloads; player payloads omit it.
type Step struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Clue      string `json:"clue"`
	QRCodeURL string `json:"qr_code_url,omitempty"`
	QRValue   string `json:"qr_code_value,omitempty"`
}

// Progress is a player's position in the hunt, consumed read-only by clients.
// Current is never in CompletedSteps; len(CompletedSteps) <= Total.
type Progress struct {
	Current           int   `json:"current"`
	Total             int   `json:"total"`
	CompletedSteps    []int `json:"completed_steps"`
	RevealedLocations []int `json:"revealed_locations"`
}

// Percent returns completion as a 0-100 integer
func (p *Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return len(p.CompletedSteps) * 100 / p.Total
}

// Revealed reports whether the location for step id has been revealed
func (p *Progress) Revealed(id int) bool {
	for _, s := range p.RevealedLocations {
		if s == id {
			return true
		}
	}
	return false
}

// StepProgress is one row of the full progress listing (GET /hunt/progress)
type StepProgress struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Clue      string `json:"clue,omitempty"`
	Completed bool   `json:"completed"`
	Revealed  bool   `json:"revealed"`
	Current   bool   `json:"current"`
}

// ScanEvent is a recorded QR scan attempt (admin feed)
type ScanEvent struct {
	ID            int    `json:"id"`
	UserID        string `json:"user_id"`
	StepID        int    `json:"step_id"`
	Success       bool   `json:"success"`
	RevealedFirst bool   `json:"revealed_first"`
	ScannedAt     string `json:"scanned_at"`
	UserEmail     string `json:"user_email,omitempty"`
	UserPhone     string `json:"user_phone,omitempty"`
	StepName      string `json:"step_name,omitempty"`
}
