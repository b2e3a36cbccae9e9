// Package cmd provides the CLI commands for crucible.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crucible-build/crucible/internal/errors"
	"github.com/crucible-build/crucible/internal/logging"
	"github.com/crucible-build/crucible/pkg/version"
)

var debugMode bool

// NewRootCmd creates the root command for the crucible CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crucible",
		Short: "Build-environment preflight validator",
		Long: `Crucible validates the host environment before a multi-stage
compiler build starts: every external program the build needs must resolve,
configuration values must be consistent, and platform constraints (cross
targets, generator choice, libc variants) must be satisfiable.

A failed check stops the build before it starts, with a precise reason,
instead of twenty minutes in with a confusing one.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("crucible version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		cfg := logging.DefaultConfig()
		if debugMode {
			cfg = logging.DebugConfig()
		}
		logging.Setup(cfg)
	}

	cmd.AddCommand(newPreflightCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command. Fatal diagnostics go to stderr, with the
// remediation suggestion when the error carries one.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		var be *errors.BuildError
		if stderrors.As(err, &be) && be.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "\n%s\n", be.Suggestion)
		}
	}
	return err
}
