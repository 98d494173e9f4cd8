package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

// hardwarePackages run against the simulated board only.
var hardwarePackages = []string{"./ssp/...", "./sim/...", "./lcd/..."}

func TestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			simOnly, err := cmd.Flags().GetBool("sim")
			if err != nil {
				return fmt.Errorf("could not get sim flag: %w", err)
			}
			if simOnly {
				return run(cmd, "go", append([]string{"test", "-count=1"}, hardwarePackages...)...)
			}
			err = test.Test()
			if err != nil {
				return fmt.Errorf("failed to run tests: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Bool("sim", false, "run only the engine, simulator and display suites")
	return cmd
}

func LintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run linting",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Lint()
			if err != nil {
				return fmt.Errorf("failed to run linting: %w", err)
			}
			target, err := cmd.Flags().GetString("firmware-target")
			if err != nil {
				return fmt.Errorf("could not get firmware-target flag: %w", err)
			}
			if target == "" {
				return nil
			}
			if _, err := exec.LookPath("tinygo"); err != nil {
				slog.Warn("tinygo not found in PATH, skipping firmware check")
				return nil
			}
			return run(cmd, "tinygo", "build", "-target", target, "-o", os.DevNull, "./cmd/lcd-firmware")
		},
	}
	cmd.Flags().String("firmware-target", "", "also compile the firmware for this tinygo target")
	return cmd
}

func IntegrationTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration-test",
		Short: "Run integration testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Integ()
			if err != nil {
				return fmt.Errorf("failed to run integration testing: %w", err)
			}
			return nil
		},
	}
	return cmd
}

func run(cmd *cobra.Command, name string, args ...string) error {
	slog.Info("running", "cmd", name, "args", args)
	c := exec.CommandContext(cmd.Context(), name, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
