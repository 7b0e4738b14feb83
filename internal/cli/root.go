// Package cli implements the cityhunt command line tool
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cityhunt/cityhunt/internal/session"
)

var (
	cfg   *Config
	store *session.Store
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "cityhunt",
		Short: "CLI tool for the scavenger hunt API",
		Long: `cityhunt is a CLI tool for playing and operating the location-based
scavenger hunt.

Players log in with an email or phone number, read clues, and submit QR
codes scanned at each location. Organizers manage players, rotate QR
codes, and watch progress.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			store = session.NewStore(session.Config{
				BaseURL: cfg.APIBaseURL(),
				Persist: session.NewFileTokenStore(cfg.TokenFile),
			})
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CITYHUNT_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CITYHUNT_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newStepCmd())
	rootCmd.AddCommand(newRevealCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newQRCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
