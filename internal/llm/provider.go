// Package llm adds optional language-model features on top of a finished report:
// a narrative rewrite of the summary and a location recognizer for the parser.
// Nothing here feeds back into analysis.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/macrolens/internal/model"
)

const systemPrompt = "You are a careful macroeconomics editor. You rewrite data reports without adding facts or figures."

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize rewrites the report summary as a short narrative
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// Complete runs a single prompt and returns the raw completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Report model.Report

	// AllowedNumbers is the allowlist of figures the LLM may cite.
	// When empty it is derived from Report.
	AllowedNumbers []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary string

	// CitedNumbers are the figures found in Summary, all of which were checked
	// against the allowlist in strict mode
	CitedNumbers []string

	Model      string
	TokensUsed int
}

// CompletionRequest is a single system + user prompt exchange
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// CompletionResponse is the raw provider answer
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	Timeout int // seconds

	// StrictNumbers rejects summaries citing figures that are not in the report
	StrictNumbers bool

	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Timeout:       30,
		StrictNumbers: true,
		MaxTokens:     800,
	}
}

// BuildPrompt constructs the default summarization prompt. The model may only
// use figures from allowedNumbers.
func BuildPrompt(report model.Report, allowedNumbers []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are rewriting the summary of a macroeconomic data report for a general reader.

RULES:
1. You MUST ONLY use numbers from this allowed list:
%s

2. DO NOT add forecasts, causes, or any figure that is not in the list.
3. Keep country and indicator names as written in the report.
4. If the report says data is missing, say so plainly.
5. Answer in the language of the report (Chinese if the report is in Chinese).

Report:
- Title: %s
- Question: %s
- Summary: %s
`, joinNumbers(allowedNumbers), report.Title, report.Query.RawText, report.Summary)

	if len(report.KeyFindings) > 0 {
		b.WriteString("\nKey Findings:\n")
		for i, f := range report.KeyFindings {
			if i >= 8 {
				fmt.Fprintf(&b, "... and %d more\n", len(report.KeyFindings)-8)
				break
			}
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if report.NoData {
		b.WriteString("\nNo data was available for this question.\n")
	}

	b.WriteString("\nWrite a 3-4 sentence narrative summary.")

	return b.String()
}

// Helper functions

func joinNumbers(numbers []string) string {
	if len(numbers) == 0 {
		return "(No figures available: do not cite any numbers)"
	}
	var b strings.Builder
	for i, n := range numbers {
		if i >= 60 { // Limit to avoid token bloat
			fmt.Fprintf(&b, "\n... and %d more figures", len(numbers)-60)
			break
		}
		fmt.Fprintf(&b, "\n- %s", n)
	}
	return b.String()
}

// summarize is the provider-independent Summarize: it builds the prompt, runs the
// completion and enforces the figure allowlist
func summarize(ctx context.Context, p Provider, cfg Config, req SummarizeRequest) (*SummarizeResponse, error) {
	allowed := req.AllowedNumbers
	if len(allowed) == 0 {
		allowed = ReportNumbers(req.Report)
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, allowed)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 800
	}

	resp, err := p.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Model:       req.Model,
		MaxTokens:   maxTokens,
		Temperature: 0.3, // Lower temperature for more focused output
	})
	if err != nil {
		return nil, err
	}

	summary := strings.TrimSpace(resp.Text)
	cited := ExtractNumbers(summary)

	if cfg.StrictNumbers {
		if leaked := unlistedNumbers(cited, allowed); len(leaked) > 0 {
			return nil, fmt.Errorf("NUMBER LEAK: LLM cited figures not in report: %s", strings.Join(leaked, ", "))
		}
	}

	return &SummarizeResponse{
		Summary:      summary,
		CitedNumbers: cited,
		Model:        resp.Model,
		TokensUsed:   resp.TokensUsed,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
