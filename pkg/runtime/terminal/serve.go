package terminal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/grc-admin/pkg/config"
	"github.com/de-tools/grc-admin/pkg/server"
	"github.com/de-tools/grc-admin/pkg/telemetry"
)

func (cli *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the maintenance scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.serve(cli.context(cmd))
		},
	}
	cmd.Flags().Int("port", 0, "Port to listen on, overrides server.port")
	return cmd
}

func (cli *CLI) serve(ctx context.Context) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Settings{
		ServiceName: cli.cfg.Telemetry.ServiceName,
		Endpoint:    cli.cfg.Telemetry.OTLPEndpoint,
		Insecure:    cli.cfg.Telemetry.Insecure,
		Version:     cli.version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			cli.logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	a, err := cli.openApp(ctx)
	if err != nil {
		return err
	}
	defer cli.closeApp(a)

	sched, err := a.Scheduler(cli.logger)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cli.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			cli.logger.Warn().Err(err).Msg("scheduler jobs still running at shutdown")
		}
	}()

	cli.loader.Watch(func(cfg *config.Config) {
		level, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			return
		}
		zerolog.SetGlobalLevel(level)
		cli.logger.Info().Str("level", level.String()).Msg("log level changed")
	})

	if cli.cfg.Auth.PolicyFile == "" {
		cli.logger.Info().Msg("using built-in authorization policy")
	}
	cli.logger.Info().
		Str("driver", cli.cfg.Database.Driver).
		Str("version", cli.version).
		Msg("configuration loaded")

	api := server.NewWebAPI(cli.logger, a.ServerConfig())
	return api.Start(ctx)
}
