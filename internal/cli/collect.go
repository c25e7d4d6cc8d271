package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/collect"
	"github.com/ppiankov/macrolens/internal/gateway"
	"github.com/ppiankov/macrolens/internal/model"
)

var (
	collectSources  []string
	collectSchedule bool
	collectFromYear int
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect World Bank and IMF series into the local store",
	Long: `Collect downloads the configured countries and indicators and saves
them into the SQL store so that questions can be answered offline.

With --schedule, collect runs once and then keeps running, repeating each
source daily at the configured time (collect.worldbank_at, collect.imf_at).

Example:
  macrolens collect
  macrolens collect --source imf --from-year 2010
  macrolens collect --schedule`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringSliceVar(&collectSources, "source", []string{gateway.SourceWorldBank, gateway.SourceIMF}, "sources to collect (worldbank, imf)")
	collectCmd.Flags().BoolVar(&collectSchedule, "schedule", false, "keep running and collect daily")
	collectCmd.Flags().IntVar(&collectFromYear, "from-year", 0, "first year to collect (default from config)")
}

// buildCollector opens the SQL store and the remote sources for ingestion
func buildCollector(ctx context.Context, cfg *model.Config, cat *catalog.Catalog) (*collect.Collector, *gateway.SQLStore, error) {
	store, err := gateway.OpenSQLStore(ctx, cfg.Gateway.Driver, cfg.Gateway.DSN, cat)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	client := gateway.NewClientFromConfig(cfg.HTTP, cfg.RateLimiting)
	c := collect.New(
		store,
		gateway.NewWorldBank(client, cfg.Gateway.WorldBankURL, cat),
		gateway.NewIMF(client, cfg.Gateway.IMFURL, cat),
		cfg.Collect,
		cfg.Concurrency.FetchWorkers,
	)
	return c, store, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if collectFromYear > 0 {
		cfg.Collect.FromYear = collectFromYear
	}

	c, store, err := buildCollector(ctx, cfg, catalog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fmt.Fprintf(os.Stderr, "⚙️  Collecting %v into %s (%s)...\n", collectSources, cfg.Gateway.DSN, cfg.Gateway.Driver)

	summaries, err := c.Run(ctx, collectSources)
	printSummaries(summaries)
	if err != nil {
		if !collectSchedule {
			return fmt.Errorf("collect failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✗ Initial collection: %v\n", err)
	}

	if !collectSchedule {
		return nil
	}

	scheduler, err := collect.NewScheduler(ctx, c, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "⏱  Scheduled %d daily jobs (Ctrl+C to stop)\n", scheduler.Jobs())
	scheduler.Start(ctx)
	return nil
}

func printSummaries(summaries []collect.Summary) {
	for _, s := range summaries {
		fmt.Fprintf(os.Stderr, "✓ %-10s saved %d points (missing %d, failed %d)\n", s.Source, s.Saved, s.Missing, s.Failed)
	}
}
