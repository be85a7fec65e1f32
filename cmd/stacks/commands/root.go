// Package commands defines the CLI command structure and flag bindings.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/logger"
	_ "github.com/json-to-terraform/stacks/internal/stacks" // register apps
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	outdir     string
}

// Root returns the root command for the stacks CLI.
func Root() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "stacks",
		Short:         "Synthesize infrastructure stacks into Terraform manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", os.Getenv(config.EnvConfig),
		"Path to the YAML configuration file (env "+config.EnvConfig+")")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVarP(&g.outdir, "outdir", "o", "", "Output directory (default cdktf.out)")

	cmd.AddCommand(Synth(g))
	cmd.AddCommand(List(g))
	cmd.AddCommand(Publish(g))
	cmd.AddCommand(Version())

	return cmd
}

// load reads the configuration, applies flag overrides and builds the logger.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.outdir != "" {
		cfg.Outdir = g.outdir
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return cfg, logger.New(cmd.ErrOrStderr(), level), nil
}
