package parse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

// MockRecognizer implements LocationRecognizer for testing
type MockRecognizer struct {
	spans []string
	err   error
	panic bool
	calls int
}

func (m *MockRecognizer) Recognize(ctx context.Context, text string) ([]string, error) {
	m.calls++
	if m.panic {
		panic("recognizer exploded")
	}
	return m.spans, m.err
}

func fixedClock() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newTestParser(opts ...Option) *Parser {
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(catalog.Default(), model.DefaultConfig().Analysis, opts...)
}

func years(q model.StructuredQuery) [2]int {
	return [2]int{q.StartYear(), q.EndYear()}
}

func TestParse_ComparisonTrendExample(t *testing.T) {
	p := newTestParser()
	res := p.Parse("比较中国和美国2010-2020年的GDP趋势")

	if res.Failed() {
		t.Fatalf("Expected no failure, got %s", res.Failure)
	}
	q := res.Query

	if diff := cmp.Diff([]model.CountryCode{"CHN", "USA"}, q.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.IndicatorCode{"NY.GDP.MKTP.CD"}, q.Indicators); diff != "" {
		t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
	}
	if !q.Start.Equal(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start 2010-01-01, got %v", q.Start)
	}
	if !q.End.Equal(time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected end 2020-12-31, got %v", q.End)
	}
	if !q.IsComparison {
		t.Error("Expected comparison flag")
	}
	if !q.IsTrend {
		t.Error("Expected trend flag")
	}
	if q.ChartHint != model.ChartLine {
		t.Errorf("Expected line chart, got %s", q.ChartHint)
	}
	if len(res.Defaulted) != 0 {
		t.Errorf("Expected nothing defaulted, got %v", res.Defaulted)
	}
}

func TestParse_NoEntitiesFallsBackToDefaults(t *testing.T) {
	p := newTestParser()
	res := p.Parse("asdkj")

	if res.Failed() {
		t.Fatalf("Expected defaults without failure, got %s", res.Failure)
	}
	q := res.Query

	if diff := cmp.Diff([]model.CountryCode{"CHN", "USA"}, q.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.IndicatorCode{"NY.GDP.MKTP.CD"}, q.Indicators); diff != "" {
		t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
	}
	if got := years(q); got != [2]int{2015, 2025} {
		t.Errorf("Expected default window 2015-2025, got %v", got)
	}
	if diff := cmp.Diff([]string{"countries", "indicators", "window"}, res.Defaulted); diff != "" {
		t.Errorf("Defaulted mismatch (-want +got):\n%s", diff)
	}
	if q.RawText != "asdkj" {
		t.Errorf("Expected raw text echoed, got %q", q.RawText)
	}
}

func TestParse_Windows(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		text string
		want [2]int
	}{
		{"美国2015年以来的失业率", [2]int{2015, 2025}},
		{"usa unemployment since 2019", [2]int{2019, 2025}},
		{"日本2018年的通胀率", [2]int{2018, 2018}},
		{"2020 and 2010 and 2015 japan", [2]int{2010, 2020}},
		{"中国过去十年的gdp", [2]int{2015, 2025}},
		{"india gdp over the last decade", [2]int{2015, 2025}},
		{"德国过去五年的出口", [2]int{2020, 2025}},
		{"france population past 5 years", [2]int{2020, 2025}},
		{"日本去年的通胀率", [2]int{2024, 2024}},
		{"uk inflation last year", [2]int{2024, 2024}},
		{"china gdp 1850", [2]int{2015, 2025}},
		{"code 20201 is not a year", [2]int{2015, 2025}},
		{"since 2030", [2]int{2030, 2030}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q := p.Parse(tt.text).Query
			if got := years(q); got != tt.want {
				t.Errorf("Parse(%q) window = %v, want %v", tt.text, got, tt.want)
			}
			if q.Start.After(*q.End) {
				t.Errorf("Parse(%q) start %v after end %v", tt.text, q.Start, q.End)
			}
		})
	}
}

func TestParse_Flags(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		text       string
		comparison bool
		trend      bool
	}{
		{"中国gdp", false, false},
		{"compare japan and germany", true, false},
		{"japan vs germany gdp growth", true, true},
		{"美国失业率的历史", false, true},
		{"中国与印度的人口", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q := p.Parse(tt.text).Query
			if q.IsComparison != tt.comparison {
				t.Errorf("IsComparison = %v, want %v", q.IsComparison, tt.comparison)
			}
			if q.IsTrend != tt.trend {
				t.Errorf("IsTrend = %v, want %v", q.IsTrend, tt.trend)
			}
		})
	}
}

func TestParse_ChartHint(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		text string
		want model.ChartHint
	}{
		{"中国gdp柱状图", model.ChartBar},
		{"饼图和柱状图", model.ChartBar},
		{"population pie chart", model.ChartPie},
		{"散点图", model.ChartScatter},
		{"inflation heat map", model.ChartHeatmap},
		{"中国gdp", model.ChartLine},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := p.Parse(tt.text).Query.ChartHint; got != tt.want {
				t.Errorf("ChartHint = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParse_FullWidthInput(t *testing.T) {
	p := newTestParser()
	q := p.Parse("Ｃｈｉｎａ ＧＤＰ ２０１９").Query

	if diff := cmp.Diff([]model.CountryCode{"CHN"}, q.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.IndicatorCode{"NY.GDP.MKTP.CD"}, q.Indicators); diff != "" {
		t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
	}
	if got := years(q); got != [2]int{2019, 2019} {
		t.Errorf("Expected 2019 window, got %v", got)
	}
}

func TestParse_GazetteerFallback(t *testing.T) {
	p := newTestParser()
	q := p.Parse("东京和北京的人口").Query

	if diff := cmp.Diff([]model.CountryCode{"CHN", "JPN"}, q.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RecognizerOnlyWithoutLexicalMatch(t *testing.T) {
	rec := &MockRecognizer{spans: []string{"Japan"}}
	p := newTestParser(WithRecognizer(rec))

	q := p.Parse("中国gdp").Query
	if rec.calls != 0 {
		t.Errorf("Expected recognizer not to be called, got %d calls", rec.calls)
	}
	if diff := cmp.Diff([]model.CountryCode{"CHN"}, q.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}

	q = p.Parse("gdp of nippon").Query
	if rec.calls != 1 {
		t.Errorf("Expected recognizer to be called once, got %d", rec.calls)
	}
	if diff := cmp.Diff([]model.CountryCode{"JPN"}, q.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RecognizerErrorIsSwallowed(t *testing.T) {
	rec := &MockRecognizer{err: errors.New("model offline")}
	p := newTestParser(WithRecognizer(rec))

	res := p.Parse("gdp of atlantis")
	if res.Failed() {
		t.Fatalf("Expected recognizer error to be swallowed, got failure %s", res.Failure)
	}
	if diff := cmp.Diff([]model.CountryCode{"CHN", "USA"}, res.Query.Countries); diff != "" {
		t.Errorf("Countries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PanicFallsBackToDefaultQuery(t *testing.T) {
	rec := &MockRecognizer{panic: true}
	p := newTestParser(WithRecognizer(rec))

	res := p.Parse("gdp growth of atlantis")
	if !res.Failed() {
		t.Fatal("Expected failure to be recorded")
	}
	q := res.Query
	if !q.IsTrend {
		t.Error("Expected default query to have trend flag set")
	}
	if q.ChartHint != model.ChartLine {
		t.Errorf("Expected line chart, got %s", q.ChartHint)
	}
	if got := years(q); got != [2]int{2015, 2025} {
		t.Errorf("Expected default window, got %v", got)
	}
	if len(q.Countries) == 0 || len(q.Indicators) == 0 {
		t.Error("Expected non-empty defaults")
	}
}

func TestParse_NeverEmpty(t *testing.T) {
	p := newTestParser()
	inputs := []string{"", "   ", "？？？", "1999 2000 2001", "vs", "gdp"}

	for _, in := range inputs {
		q := p.Parse(in).Query
		if len(q.Countries) == 0 || len(q.Indicators) == 0 {
			t.Errorf("Parse(%q) returned empty sets: %+v", in, q)
		}
		if q.Start == nil || q.End == nil || q.Start.After(*q.End) {
			t.Errorf("Parse(%q) returned invalid window", in)
		}
	}
}

func TestChain(t *testing.T) {
	failing := &MockRecognizer{err: errors.New("down")}
	empty := &MockRecognizer{}
	hit := &MockRecognizer{spans: []string{"india"}}

	spans, err := Chain{failing, empty, hit}.Recognize(context.Background(), "x")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff([]string{"india"}, spans); diff != "" {
		t.Errorf("Spans mismatch (-want +got):\n%s", diff)
	}

	_, err = Chain{failing}.Recognize(context.Background(), "x")
	if err == nil {
		t.Error("Expected last error when every recognizer fails")
	}
}
