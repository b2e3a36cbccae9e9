package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crucible-build/crucible/configs"
	"github.com/crucible-build/crucible/internal/config"
	"github.com/crucible-build/crucible/internal/stage0"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the build configuration",
	}

	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate crucible.yaml without running environment checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(configPath)
			if err != nil {
				return err
			}

			if _, err := config.Load(path); err != nil {
				return err
			}
			cmd.Printf("%s is valid\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to crucible.yaml")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(configPath)
			if err != nil {
				return err
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("render configuration: %w", err)
			}
			cmd.Print(string(out))

			// Bootstrap provenance, when the metadata file is present.
			if md, err := stage0.Load(cfg.SrcDir); err == nil {
				cmd.Printf("\n# bootstrap: compiler %s (%s)\n", md.Compiler(), md.Date())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to crucible.yaml")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter crucible.yaml to the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(".", config.DefaultConfigName)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			if err := os.WriteFile(path, []byte(configs.ExampleConfig), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	return cmd
}
