package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, phone string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a player with an email or phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := store.LoginPlayer(cmd.Context(), email, phone)
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(store.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and discard the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store.Logout()

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store.Restore(cmd.Context())

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(store.Snapshot())
			return nil
		},
	}
}
