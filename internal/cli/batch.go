package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/macrolens/internal/pipeline"
	"github.com/ppiankov/macrolens/internal/worker"
)

var (
	concurrency    int
	outputDir      string
	batchTimeout   time.Duration
	requestTimeout time.Duration // Per-lookup HTTP timeout; ask's timeout covers the whole question
	// noCache, noFooter and sources are defined in ask.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer multiple questions from a file in parallel",
	Long: `Batch answers many questions concurrently:
- Read questions from input file (one per line, # for comments)
- Answer questions in parallel with configurable worker count
- Each question fetches its series concurrently
- Write a JSON and Markdown report for each question

Example:
  macrolens batch questions.txt
  macrolens batch questions.txt --concurrency 4 --output-dir ./reports
  macrolens batch questions.txt --timeout 5m --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./macrolens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from ask command
	batchCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 30*time.Second, "HTTP timeout for individual lookups")
	batchCmd.Flags().StringSliceVar(&sources, "source", nil, "data sources in fallback order (store, worldbank, imf)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative summary")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  macrolens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	timeout = requestTimeout
	if err := applyRequestFlags(cfg); err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency

	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, closer, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	processor := worker.NewBatchProcessor(p, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading questions from file...\n")
	questions, err := worker.ReadQuestionsFromFile(file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d questions\n", len(questions))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Answering with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	results := processor.ProcessQuestions(ctx, questions)

	successCount := 0
	failureCount := 0
	noDataCount := 0
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	for i, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Question, result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", i+1, sanitizeFilename(result.Question))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Question, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Question, err)
			continue
		}

		successCount++
		if result.Report.NoData {
			noDataCount++
			fmt.Fprintf(os.Stderr, "○ %s (no data)\n", result.Question)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d findings)\n", result.Report.Title, len(result.Report.KeyFindings))
	}

	if skipped := len(questions) - len(results); skipped > 0 {
		fmt.Fprintf(os.Stderr, "✗ %d questions were not answered before the timeout\n", skipped)
		failureCount += skipped
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(questions))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  No data:   %d\n", noDataCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"？", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// maxFilenameRunes keeps slugs well under common 255-byte limits for CJK text
const maxFilenameRunes = 40

// sanitizeFilename turns a question into a filesystem-safe slug
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".-_")

	if runes := []rune(s); len(runes) > maxFilenameRunes {
		s = string(runes[:maxFilenameRunes])
	}
	if s == "" {
		s = "question"
	}
	return s
}
