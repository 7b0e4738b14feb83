package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Organizer commands",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminStatsCmd())
	cmd.AddCommand(newAdminEventsCmd())
	cmd.AddCommand(newAdminResetCmd())
	cmd.AddCommand(newAdminSkipStepCmd())
	cmd.AddCommand(newAdminSetQRCmd())

	return cmd
}

// requireAdmin resolves the saved token and fails unless it belongs to an
// admin
func requireAdmin(cmd *cobra.Command) error {
	if store.Restore(cmd.Context()) != model.RoleAdmin {
		return fmt.Errorf("not logged in as an admin (run 'cityhunt admin login' first)")
	}
	return nil
}

func newAdminLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an organizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := store.LoginAdmin(cmd.Context(), username, password)
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(store.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Admin username (required)")
	cmd.Flags().StringVar(&password, "pass", "", "Admin password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List players and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(cmd); err != nil {
				return err
			}

			resp, err := store.API().AdminUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show hunt-wide statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(cmd); err != nil {
				return err
			}

			resp, err := store.API().AdminStats(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newAdminEventsCmd() *cobra.Command {
	var filter client.EventFilter

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the scan event feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(cmd); err != nil {
				return err
			}

			resp, err := store.API().AdminEvents(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.UserID, "user-id", "", "Only events for this player")
	cmd.Flags().IntVar(&filter.StepID, "step-id", 0, "Only events for this step")
	cmd.Flags().BoolVar(&filter.SuccessOnly, "success-only", false, "Only successful scans")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of events")

	return cmd
}

func newAdminResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user-id>",
		Short: "Reset a player's progress to the first step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(cmd); err != nil {
				return err
			}

			resp, err := store.API().ResetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newAdminSkipStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip-step <user-id>",
		Short: "Force-complete a player's current step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(cmd); err != nil {
				return err
			}

			resp, err := store.API().SkipStep(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newAdminSetQRCmd() *cobra.Command {
	var value, posterURL string

	cmd := &cobra.Command{
		Use:   "set-qr <step-id>",
		Short: "Rotate a step's QR code value or poster URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(cmd); err != nil {
				return err
			}

			stepID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step id: %s", args[0])
			}

			var req client.StepUpdateRequest
			if cmd.Flags().Changed("value") {
				req.QRValue = &value
			}
			if cmd.Flags().Changed("url") {
				req.QRCodeURL = &posterURL
			}
			if req.QRValue == nil && req.QRCodeURL == nil {
				return fmt.Errorf("nothing to update: pass --value and/or --url")
			}

			resp, err := store.API().UpdateStep(cmd.Context(), stepID, req)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "New QR code value")
	cmd.Flags().StringVar(&posterURL, "url", "", "New QR poster URL")

	return cmd
}
