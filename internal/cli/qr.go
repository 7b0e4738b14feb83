package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cityhunt/cityhunt/internal/qrposter"
	"github.com/cityhunt/cityhunt/internal/scan"
)

func newQRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "QR poster utilities",
	}

	cmd.AddCommand(newQRPosterCmd())
	cmd.AddCommand(newQRDecodeCmd())

	return cmd
}

func newQRPosterCmd() *cobra.Command {
	var title, value, instruction, outPath string
	var stepID int

	cmd := &cobra.Command{
		Use:   "poster",
		Short: "Render a printable QR poster for a step",
		RunE: func(cmd *cobra.Command, args []string) error {
			poster := qrposter.Poster{
				Title:       title,
				Value:       value,
				Instruction: instruction,
			}

			path := outPath
			if path == "" {
				path = qrposter.Filename(stepID, title)
			}

			if err := poster.WriteFile(path); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage(fmt.Sprintf("Poster written to %s", path))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Poster title, usually the step name (required)")
	cmd.Flags().StringVar(&value, "value", "", "QR code value (required)")
	cmd.Flags().StringVar(&instruction, "instruction", "", "Instruction line under the code")
	cmd.Flags().IntVar(&stepID, "step", 0, "Step number, used for the default filename")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: derived from step and title)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newQRDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image>",
		Short: "Decode a QR code from an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := scan.DecodeFile(args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage(value)
			return nil
		},
	}
}
