package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/macrolens/internal/model"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	noCache     bool
	noFooter    bool
	insecureTLS bool
	sources     []string
	printJSON   bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one macroeconomic question",
	Long: `Ask parses a natural-language question and answers it with a report:
- Resolve countries, indicators and the year window
- Look up each series from the configured sources
- Compute statistics, trends and comparisons
- Print a summary and optionally write JSON and Markdown reports

Example:
  macrolens ask "比较中国、美国和日本过去五年的GDP"
  macrolens ask "中国2010年以来的通货膨胀率" --json report.json --md report.md
  macrolens ask "US unemployment last decade" --llm --llm-provider anthropic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	// Output flags
	askCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	askCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	askCmd.Flags().BoolVar(&printJSON, "print-json", false, "print query, analysis and report as JSON to stdout")
	askCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Source flags
	askCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	askCmd.Flags().StringSliceVar(&sources, "source", nil, "data sources in fallback order (store, worldbank, imf)")
	askCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	askCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")

	// LLM flags
	askCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative summary")
	askCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	askCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}

// applyRequestFlags copies flags shared by ask and batch onto cfg
func applyRequestFlags(cfg *model.Config) error {
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if len(sources) > 0 {
		cfg.Gateway.Sources = sources
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = verbose
	return applyLLMFlags(cfg)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyRequestFlags(cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\n", question)
		fmt.Fprintf(os.Stderr, "Sources:  %s\n", strings.Join(cfg.Gateway.Sources, " → "))
		fmt.Fprintf(os.Stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, closer, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	result, err := p.Run(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if verbose {
		q := result.Parse.Query
		fmt.Fprintf(os.Stderr, "✓ Countries:  %v\n", q.Countries)
		fmt.Fprintf(os.Stderr, "✓ Indicators: %v\n", q.Indicators)
		fmt.Fprintf(os.Stderr, "✓ Window:     %d-%d\n", q.StartYear(), q.EndYear())
		if len(result.Parse.Defaulted) > 0 {
			fmt.Fprintf(os.Stderr, "  Defaulted:  %s\n", strings.Join(result.Parse.Defaulted, ", "))
		}
		fmt.Fprintf(os.Stderr, "✓ Series:     %d\n", len(result.Analysis.Series))
		if result.Report.LLM != nil && result.Report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", result.Report.LLM.Provider, result.Report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Message)

	if err := p.RenderReport(result.Report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
