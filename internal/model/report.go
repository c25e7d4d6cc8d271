package model

import "time"

// Report is the final synthesized answer to a question.
// Reports are built once by the synthesizer and never modified afterwards,
// except for the optional LLM narrative attached by the pipeline.
type Report struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	KeyFindings []string        `json:"key_findings"`
	Tables      []DataTable     `json:"data_tables"`
	Chart       *ChartSpec      `json:"charts,omitempty"`
	GeneratedAt time.Time       `json:"timestamp"`
	Query       StructuredQuery `json:"query_details"`
	NoData      bool            `json:"no_data,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative, never replaces Summary
}

// DataTable is a titled grid of pre-formatted cells
type DataTable struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Column describes one table column
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Headers returns the column labels in order
func (t DataTable) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	return headers
}

// LLMSummary contains an optional LLM-written narrative of the report.
// It is kept separate from the synthesized Summary and never feeds back into analysis.
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"` // openai, anthropic, ollama
	Model         string   `json:"model,omitempty"`
	StrictNumbers bool     `json:"strict_numbers"` // Whether figures were checked against the report
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
