package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/rest"
	"github.com/custodia-labs/nutrisense/internal/config"
	"github.com/custodia-labs/nutrisense/internal/logger"
	"github.com/custodia-labs/nutrisense/internal/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API",
	Long: `Serve goals, the food log, progress and profiles over HTTP/JSON under
/v1/users/{id}. Health is reported on /healthz and Prometheus metrics on
/metrics.

Logging settings are reloaded when the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default http.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := newRESTServer()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = appConfig.HTTP.Addr
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go watchConfig(ctx)

	return server.Run(ctx, addr)
}

func newRESTServer() (*rest.Server, error) {
	ports := &rest.Ports{
		Goal:     goalService,
		Intake:   intakeService,
		Progress: progressService,
		Profile:  profileService,
	}
	return rest.NewServer(ports,
		rest.WithDefaultLocation(appConfig.Location()),
		rest.WithMetrics(metrics.New(nil)),
	)
}

// watchConfig applies logging changes from the config file until ctx ends.
// Storage and listener settings need a restart.
func watchConfig(ctx context.Context) {
	log := logger.Named("config")
	err := config.Watch(ctx, configPath, func(cfg *config.Config) {
		if err := logger.Configure(cfg.Log); err != nil {
			log.Warn("ignoring log settings", zap.Error(err))
			return
		}
		logger.SetVerbose(verbose)
		log.Info("reloaded configuration", zap.String("path", configPath))
	})
	if err != nil && ctx.Err() == nil {
		log.Warn("config watcher stopped", zap.Error(err))
	}
}
