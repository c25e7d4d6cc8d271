package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/macrolens/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name       string
	available  bool
	response   *SummarizeResponse
	completion *CompletionResponse
	err        error

	lastPrompt string
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.lastPrompt = req.Prompt
	if m.err != nil {
		return nil, m.err
	}
	return m.completion, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func testReport() model.Report {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	return model.Report{
		Title:   "中国、美国GDP（现价美元）比较",
		Summary: "2023年中国GDP为17.79万亿美元，美国为12.5。",
		KeyFindings: []string{
			"中国GDP最近一期变化+5.2%",
		},
		Tables: []model.DataTable{
			{
				Title:   "统计",
				Columns: []model.Column{{Key: "country", Label: "国家"}, {Key: "mean", Label: "平均值"}},
				Rows:    [][]string{{"中国", "1,234.50"}},
			},
		},
		Query: model.StructuredQuery{
			Countries:  []model.CountryCode{"CHN", "USA"},
			Indicators: []model.IndicatorCode{"NY.GDP.MKTP.CD"},
			Start:      &start,
			End:        &end,
			RawText:    "中国和美国GDP比较",
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.provider != nil {
		t.Error("Expected provider to be nil when disabled")
	}
	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "bard"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	summarizer := &Summarizer{}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestSummarizer_GenerateSummary_NilSummarizer(t *testing.T) {
	var summarizer *Summarizer

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil || summary != nil {
		t.Errorf("Expected nil, nil from nil summarizer, got %v, %v", summary, err)
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := NewSummarizerWithProvider(&MockProvider{name: "test-provider"}, Config{StrictNumbers: true})

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "not available") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected warning to mention provider unavailability, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:      "中国GDP为17.79万亿美元。",
			CitedNumbers: []string{"17.79"},
			Model:        "test-model",
			TokensUsed:   150,
		},
	}

	summarizer := NewSummarizerWithProvider(mockProvider, Config{Model: "test-model", StrictNumbers: true})

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary to be generated")
	}

	want := &model.LLMSummary{
		Enabled:       true,
		Provider:      "test-provider",
		Model:         "test-model",
		StrictNumbers: true,
		SummaryMD:     "中国GDP为17.79万亿美元。",
		Warnings: []string{
			"Tokens used: 150",
			"Verified 1 figures against the report",
		},
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       &mockError{msg: "API rate limit exceeded"},
	}

	summarizer := NewSummarizerWithProvider(mockProvider, Config{Model: "test-model", StrictNumbers: true})

	// A provider failure must not fail the request
	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary with error warning")
	}
	if !summary.Enabled {
		t.Error("Expected summary to be marked as enabled (but failed)")
	}
	if summary.SummaryMD != "" {
		t.Errorf("Expected empty summary text, got %q", summary.SummaryMD)
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "failed") && strings.Contains(warning, "rate limit") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestSummarize_StrictNumbersThroughComplete(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		strict  bool
		wantErr bool
	}{
		{name: "listed figures", text: "2023年中国GDP为17.79万亿美元。", strict: true},
		{name: "grouping and trailing zeros", text: "平均值为1234.5。", strict: true},
		{name: "small counts", text: "共比较了2个国家。", strict: true},
		{name: "invented figure", text: "预计增长7.5%。", strict: true, wantErr: true},
		{name: "invented figure non-strict", text: "预计增长7.5%。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockProvider{completion: &CompletionResponse{Text: tt.text}}
			_, err := summarize(context.Background(), p, Config{StrictNumbers: tt.strict}, SummarizeRequest{Report: testReport()})
			if (err != nil) != tt.wantErr {
				t.Errorf("summarize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(p.lastPrompt, "17.79") {
				t.Error("Expected default prompt to list report figures")
			}
		})
	}
}

func TestRenderSeparateMarkdown_Disabled(t *testing.T) {
	if md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}); md != "" {
		t.Error("Expected empty markdown when disabled")
	}
}

func TestRenderSeparateMarkdown_Nil(t *testing.T) {
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
}

func TestRenderSeparateMarkdown_Success(t *testing.T) {
	summary := &model.LLMSummary{
		Enabled:       true,
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		StrictNumbers: true,
		SummaryMD:     "This is the generated summary content.",
		Warnings: []string{
			"Tokens used: 150",
			"Verified 5 figures against the report",
		},
	}

	md := RenderSeparateMarkdown(summary)
	if md == "" {
		t.Fatal("Expected markdown to be generated")
	}

	requiredSections := []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"Provider",
		"openai",
		"Model",
		"gpt-4o-mini",
		"Strict Numbers Mode",
		"true",
		"This is the generated summary content.",
		"## Notes",
		"Tokens used: 150",
		"Verified 5 figures",
		"determined independently",
	}

	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain '%s'", section)
		}
	}
}

func TestRenderSeparateMarkdown_NoSummary(t *testing.T) {
	md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "test-provider"})

	if !strings.Contains(md, "No summary generated") {
		t.Error("Expected message about no summary")
	}
}

func TestBuildPrompt_BasicStructure(t *testing.T) {
	report := testReport()
	prompt := BuildPrompt(report, ReportNumbers(report))

	requiredElements := []string{
		"RULES",
		"MUST ONLY use numbers from this allowed list",
		"- 17.79",
		"- 2023",
		"DO NOT add forecasts",
		"Title: 中国、美国GDP（现价美元）比较",
		"Question: 中国和美国GDP比较",
		"Key Findings:",
		"- 中国GDP最近一期变化+5.2%",
		"3-4 sentence",
	}

	for _, element := range requiredElements {
		if !strings.Contains(prompt, element) {
			t.Errorf("Expected prompt to contain '%s'", element)
		}
	}
}

func TestBuildPrompt_NoNumbers(t *testing.T) {
	report := model.Report{Title: "无数据", NoData: true}
	prompt := BuildPrompt(report, nil)

	if !strings.Contains(prompt, "do not cite any numbers") {
		t.Error("Expected prompt to forbid numbers when none are available")
	}
	if !strings.Contains(prompt, "No data was available") {
		t.Error("Expected prompt to mention missing data")
	}
	if strings.Contains(prompt, "Key Findings") {
		t.Error("Expected no findings section for an empty report")
	}
}

func TestJoinNumbers_Many(t *testing.T) {
	numbers := make([]string, 70)
	for i := range numbers {
		numbers[i] = "1"
	}

	result := joinNumbers(numbers)
	if !strings.Contains(result, "... and 10 more figures") {
		t.Errorf("Expected truncation note, got %s", result)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected empty provider by default, got %s", config.Provider)
	}
	if !config.StrictNumbers {
		t.Error("Expected strict numbers to be enabled by default")
	}
	if config.Timeout != 30 {
		t.Errorf("Expected timeout 30, got %d", config.Timeout)
	}
}

func TestSummarizer_ProviderName(t *testing.T) {
	summarizer := NewSummarizerWithProvider(&MockProvider{name: "my-provider"}, Config{})

	if !summarizer.IsEnabled() {
		t.Error("Expected summarizer to be enabled")
	}
	if summarizer.ProviderName() != "my-provider" {
		t.Errorf("Expected provider name 'my-provider', got '%s'", summarizer.ProviderName())
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{provider: "", wantNil: true},
		{provider: "openai", apiKey: "k", wantName: "openai"},
		{provider: "OpenAI", apiKey: "k", wantName: "openai"},
		{provider: "claude", apiKey: "k", wantName: "anthropic"},
		{provider: "ollama", wantName: "ollama"},
		{provider: "openai", wantErr: true},
		{provider: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		p, err := NewProvider(Config{Provider: tt.provider, APIKey: tt.apiKey})
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewProvider(%q): expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewProvider(%q) failed: %v", tt.provider, err)
			continue
		}
		if tt.wantNil {
			if p != nil {
				t.Errorf("NewProvider(%q): expected nil provider", tt.provider)
			}
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("NewProvider(%q): expected %s, got %s", tt.provider, tt.wantName, p.Name())
		}
	}
}

func TestConfigFromModel(t *testing.T) {
	got := ConfigFromModel(
		model.LLMConfig{Provider: "ollama", Model: "qwen2.5", Timeout: 10, StrictNumbers: true, MaxTokens: 300},
		model.HTTPConfig{HTTPProxy: "http://proxy:3128", NoProxy: "localhost"},
	)
	want := Config{
		Provider:      "ollama",
		Model:         "qwen2.5",
		Timeout:       10,
		StrictNumbers: true,
		MaxTokens:     300,
		HTTPProxy:     "http://proxy:3128",
		NoProxy:       "localhost",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ConfigFromModel mismatch (-want +got):\n%s", diff)
	}
}

func TestRecognizer(t *testing.T) {
	p := &MockProvider{completion: &CompletionResponse{Text: "- China\n2. Japan\n\"china\"\n"}}
	r := NewRecognizer(p)

	spans, err := r.Recognize(context.Background(), "北京和大阪的经济")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if diff := cmp.Diff([]string{"China", "Japan"}, spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(p.lastPrompt, "北京和大阪的经济") {
		t.Error("Expected question in recognizer prompt")
	}
}

func TestRecognizer_None(t *testing.T) {
	r := NewRecognizer(&MockProvider{completion: &CompletionResponse{Text: "NONE"}})

	spans, err := r.Recognize(context.Background(), "GDP是什么")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(spans) != 0 {
		t.Errorf("Expected no spans, got %v", spans)
	}
}

func TestRecognizer_Error(t *testing.T) {
	r := NewRecognizer(&MockProvider{err: errors.New("boom")})

	if _, err := r.Recognize(context.Background(), "北京"); err == nil {
		t.Fatal("Expected error from failing provider")
	}

	if _, err := NewRecognizer(nil).Recognize(context.Background(), "北京"); err == nil {
		t.Fatal("Expected error without provider")
	}
}
