package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/MacroCompare/internal/config"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/MacroCompare/internal/interfaces/http"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Run the MacroCompare HTTP API until SIGINT or SIGTERM. Equivalent to the apiserver binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunServer(ctx, cfg, cliCtx.ConfigPath)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

// RunServer builds the API server from cfg and serves until ctx is
// cancelled.  When configPath is set, log.level is reloaded on file changes.
func RunServer(ctx context.Context, cfg *config.Config, configPath string) error {
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting MacroCompare API server",
		logging.String("version", Version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("backend", cfg.Backend.BaseURL),
		logging.String("model", cfg.Backend.Model),
	)

	if configPath != "" {
		watchErr := config.Watch(configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("log level reloaded", logging.String("level", next.Log.Level))
			}
		}, func(err error) {
			logger.Warn("ignoring invalid config revision", logging.Err(err))
		})
		if watchErr != nil {
			logger.Warn("config watch disabled", logging.Err(watchErr))
		}
	}

	app, err := httpserver.NewApp(cfg, logger, httpserver.WithVersion(Version))
	if err != nil {
		logger.Error("failed to assemble API server", logging.Err(err))
		return err
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("API server stopped with error", logging.Err(err))
		return err
	}
	logger.Info("API server stopped")
	return nil
}

//Personal.AI order the ending
