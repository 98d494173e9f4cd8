package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

func FirmwareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firmware",
		Short: "Build the microcontroller demo with tinygo",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := cmd.Flags().GetString("target")
			if err != nil {
				return fmt.Errorf("could not get target flag: %w", err)
			}
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("could not get output flag: %w", err)
			}
			flash, err := cmd.Flags().GetBool("flash")
			if err != nil {
				return fmt.Errorf("could not get flash flag: %w", err)
			}
			if _, err := exec.LookPath("tinygo"); err != nil {
				slog.Error("tinygo not found in PATH, see https://tinygo.org/getting-started/install/")
				return fmt.Errorf("tinygo not installed: %w", err)
			}

			tinygoArgs := []string{"build", "-target", target, "-o", output, "./cmd/lcd-firmware"}
			if flash {
				tinygoArgs = []string{"flash", "-target", target, "./cmd/lcd-firmware"}
			} else if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("could not create output directory: %w", err)
			}
			return run(cmd, "tinygo", tinygoArgs...)
		},
	}
	cmd.Flags().String("target", "pico", "tinygo target board")
	cmd.Flags().String("output", "dist/lcd-firmware.uf2", "firmware image path")
	cmd.Flags().Bool("flash", false, "flash the board instead of writing an image")
	return cmd
}
