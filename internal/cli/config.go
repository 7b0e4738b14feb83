package cli

import (
	"os"

	"github.com/cityhunt/cityhunt/internal/session"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("CITYHUNT_SERVER", "http://localhost:8080"),
		TokenFile: getEnvOrDefault("CITYHUNT_TOKEN_FILE", session.DefaultTokenPath()),
		Output:    "text",
		Verbose:   false,
	}
}

// APIBaseURL returns the base URL of the hunt API
func (c *Config) APIBaseURL() string {
	return c.ServerURL + "/api"
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
