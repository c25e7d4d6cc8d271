package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/macrolens/internal/collect"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/pipeline"
	"github.com/ppiankov/macrolens/internal/server"
)

var (
	serveAddr     string
	serveSchedule bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query and data API over HTTP",
	Long: `Serve starts the HTTP API:

  POST /api/query/natural_language   {"query": "..."}
  GET  /api/data/countries
  GET  /api/data/indicators
  GET  /api/data/series?country=CHN&indicator=NY.GDP.MKTP.CD&start=2015&end=2024
  POST /api/collection/run-all
  POST /api/collection/{worldbank|imf}
  GET  /healthz

Example:
  macrolens serve --addr :8080
  macrolens serve --schedule`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveSchedule, "schedule", false, "also run the daily collection jobs")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if err := applyLLMFlags(cfg); err != nil {
		return err
	}

	p, closer, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var runner server.CollectionRunner
	c, store, err := buildCollector(ctx, cfg, p.Catalog())
	if err != nil {
		logger.Log.WithError(err).Warn("Collection endpoints disabled")
	} else {
		defer func() { _ = store.Close() }()
		runner = c

		if serveSchedule {
			scheduler, err := collect.NewScheduler(ctx, c, nil)
			if err != nil {
				return err
			}
			go scheduler.Start(ctx)
		}
	}

	fmt.Fprintf(os.Stderr, "macrolens v%s listening on %s\n", pipeline.Version, cfg.Server.Addr)
	return server.New(p, runner, cfg.Server).ListenAndServe(ctx)
}
