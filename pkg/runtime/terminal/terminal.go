// Package terminal implements the grc command line.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/grc-admin/pkg/app"
	"github.com/de-tools/grc-admin/pkg/config"
	"github.com/de-tools/grc-admin/pkg/runtime/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	rootCmd  *cobra.Command
	out      io.Writer
	reporter *Reporter
	table    *export.Reporter
	version  string

	cfgPath string
	loader  *config.Loader
	cfg     *config.Config
	logger  zerolog.Logger
}

// Options contain configuration for the CLI
type Options struct {
	Output  io.Writer
	Version string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cli := &CLI{
		out:      opts.Output,
		reporter: NewReporter(opts.Output),
		table:    export.NewReporter(opts.Output),
		version:  opts.Version,
		loader:   config.NewLoader(logger),
		logger:   logger,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grc",
		Short:         "Governance, risk and compliance administration",
		Version:       cli.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "", "Path to the config file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(cli.newServeCmd())
	cmd.AddCommand(cli.newMigrateCmd())
	cmd.AddCommand(cli.newTokenCmd())
	cmd.AddCommand(cli.newAuditCmd())
	cmd.AddCommand(cli.newReportCmd())
	cmd.AddCommand(cli.newImportCmd())
	cmd.AddCommand(cli.newExportCmd())

	return cmd
}

func (cli *CLI) loadConfig(cmd *cobra.Command) error {
	if err := cli.loader.BindFlag("log.level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("port"); f != nil {
		if err := cli.loader.BindFlag("server.port", f); err != nil {
			return err
		}
	}

	cfg, err := cli.loader.Load(cli.cfgPath)
	if err != nil {
		return err
	}
	cli.cfg = cfg
	cli.logger = newLogger(cfg.Log)
	zerolog.DefaultContextLogger = &cli.logger
	return nil
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	// the global level is what config reloads adjust
	if level, err := zerolog.ParseLevel(cfg.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func (cli *CLI) context(cmd *cobra.Command) context.Context {
	return cli.logger.WithContext(cmd.Context())
}

// openApp builds the full application; callers must Close it.
func (cli *CLI) openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cli.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise application: %w", err)
	}
	return a, nil
}

func (cli *CLI) closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		cli.logger.Error().Err(err).Msg("failed to close application")
	}
}
