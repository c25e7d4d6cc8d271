package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ppiankov/macrolens/internal/model"
)

// Renderer writes reports as JSON, Markdown and terminal tables
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer that prints terminal summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// WithOutput returns a copy of the renderer printing to w
func (r *Renderer) WithOutput(w io.Writer) *Renderer {
	c := *r
	c.out = w
	return &c
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(rep *model.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(rep *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(rep)))
}

// RenderLLMMarkdown writes an already rendered LLM narrative
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if markdown == "" {
		return nil
	}
	return writeFile(path, []byte(markdown))
}

// Markdown renders the report body
func (r *Renderer) Markdown(rep *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rep.Title)
	if rep.Query.RawText != "" {
		fmt.Fprintf(&b, "> %s\n\n", rep.Query.RawText)
	}

	b.WriteString("## 摘要\n\n")
	b.WriteString(rep.Summary)
	b.WriteString("\n")

	if len(rep.KeyFindings) > 0 {
		b.WriteString("\n## 主要发现\n\n")
		for _, f := range rep.KeyFindings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	for _, t := range rep.Tables {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Title)
		b.WriteString(markdownTable(t))
	}

	if rep.Chart != nil {
		fmt.Fprintf(&b, "\n## 图表\n\n- 类型: %s\n- 布局: %s\n", rep.Chart.Geometry, rep.Chart.Layout)
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n\n_Generated by macrolens v%s at %s. Report ID: %s_\n",
			Version, rep.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"), rep.ID)
	}

	return b.String()
}

// RenderSummary prints the title, summary, findings and tables to the terminal
func (r *Renderer) RenderSummary(rep *model.Report) {
	w := r.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s\n", rep.Title)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w)
	fmt.Fprintln(w, rep.Summary)

	if len(rep.KeyFindings) > 0 {
		fmt.Fprintln(w)
		for _, f := range rep.KeyFindings {
			fmt.Fprintf(w, "  • %s\n", f)
		}
	}

	for _, t := range rep.Tables {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", t.Title)
		table := tablewriter.NewWriter(w)
		table.SetHeader(t.Headers())
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.AppendBulk(t.Rows)
		table.Render()
	}

	if rep.LLM != nil && rep.LLM.Enabled && rep.LLM.SummaryMD != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "LLM (%s): %s\n", rep.LLM.Provider, rep.LLM.SummaryMD)
	}
	fmt.Fprintln(w)
}

func markdownTable(t model.DataTable) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(t.Headers())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(t.Rows)
	table.Render()
	return b.String()
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
