package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/scan"
)

// requirePlayer resolves the saved token and fails unless it belongs to a
// player
func requirePlayer(cmd *cobra.Command) error {
	if store.Restore(cmd.Context()) != model.RolePlayer {
		return fmt.Errorf("not logged in as a player (run 'cityhunt login' first)")
	}
	return nil
}

func newStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step",
		Short: "Show the current clue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePlayer(cmd); err != nil {
				return err
			}

			resp, err := store.API().CurrentStep(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newRevealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal",
		Short: "Reveal the current step's location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePlayer(cmd); err != nil {
				return err
			}

			resp, err := store.API().RevealLocation(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show progress through all steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePlayer(cmd); err != nil {
				return err
			}

			resp, err := store.API().Progress(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	var text, imagePath string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a QR code for the current step",
		Long: `Scan a QR code for the current step.

By default the first camera is opened and frames are decoded until a QR
code is found. Use --image to decode a saved photo instead, or --text to
submit a manually entered code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePlayer(cmd); err != nil {
				return err
			}

			value, err := resolveScanValue(cmd, text, imagePath)
			if err != nil {
				return err
			}

			resp, err := store.API().ScanQR(cmd.Context(), value)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Submit a manually entered code instead of scanning")
	cmd.Flags().StringVar(&imagePath, "image", "", "Decode a QR code from an image file")

	return cmd
}

func resolveScanValue(cmd *cobra.Command, text, imagePath string) (string, error) {
	if text != "" {
		value, ok := scan.Manual(text)
		if !ok {
			return "", fmt.Errorf("manual code must not be empty")
		}
		return value, nil
	}

	if imagePath != "" {
		return scan.DecodeFile(imagePath)
	}

	return scanFromCamera(cmd)
}

func scanFromCamera(cmd *cobra.Command) (string, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sc, err := scan.New().Start(ctx)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Point the camera at the QR code (Ctrl-C to cancel)...")

	outcome := <-sc.Done()
	if outcome.Err != nil {
		return "", outcome.Err
	}
	return outcome.Text, nil
}
