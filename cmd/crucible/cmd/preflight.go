package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucible-build/crucible/internal/config"
	"github.com/crucible-build/crucible/internal/preflight"
)

func newPreflightCmd() *cobra.Command {
	var (
		configPath string
		force      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate the build environment before starting a build",
		Long: `Run the ordered preflight rule set against the build configuration.

Checks run sequentially and fail fast: the first missing tool or
inconsistent configuration value aborts with a diagnostic. On success a
marker is written to the build output directory so unchanged
configurations skip re-validation.`,
		Example: `  # Validate using crucible.yaml at the source root
  crucible preflight

  # Re-validate even when a marker exists
  crucible preflight --force

  # Show each rule as it passes
  crucible preflight --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreflight(cmd, configPath, force, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to crucible.yaml (default: discovered from the working directory)")
	cmd.Flags().BoolVar(&force, "force", false, "Run all checks even if a marker exists")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print each rule as it passes")

	return cmd
}

func runPreflight(cmd *cobra.Command, configPath string, force, verbose bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	// Wrapper scripts drop overrides like CRUCIBLE_PYTHON into .env.
	if err := config.LoadEnvFile(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lock := preflight.NewBuildLock(cfg.OutDir)
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	fingerprint, err := preflight.Fingerprint(configPath)
	if err != nil {
		return err
	}

	if !force && !preflight.NeedsCheck(cfg.OutDir, fingerprint) {
		if age := preflight.MarkerAge(cfg.OutDir); age > 0 {
			cmd.Printf("environment already validated %s ago; use --force to re-check\n", formatDuration(age))
		}
		return nil
	}

	validator := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)
	if err := validator.Check(ctx, cfg); err != nil {
		return err
	}

	if err := preflight.MarkPassed(cfg.OutDir, fingerprint); err != nil {
		return err
	}

	cmd.Println("build environment OK")
	return nil
}

// resolveConfigPath finds crucible.yaml: an explicit flag wins, otherwise the
// source root is discovered from the working directory.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	root, err := config.FindSourceRoot(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(root, config.DefaultConfigName), nil
}

// formatDuration renders an age in the largest useful unit.
func formatDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
