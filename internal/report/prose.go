package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/macrolens/internal/model"
)

// summary concatenates the intro, statistics, trend and comparison sentences.
// A section without data contributes nothing.
func (s *Synthesizer) summary(a model.AnalysisResult, q model.StructuredQuery) string {
	parts := []string{s.intro(a, q)}

	for _, sentence := range []string{
		statisticsSentence(a.Statistics),
		trendSentence(a.Trends),
		comparisonSentence(a.Comparison),
	} {
		if sentence != "" {
			parts = append(parts, sentence)
		}
	}

	return strings.Join(parts, " ")
}

func (s *Synthesizer) intro(a model.AnalysisResult, q model.StructuredQuery) string {
	var b strings.Builder
	b.WriteString("本报告分析了")

	if len(q.Countries) > 0 {
		b.WriteString(strings.Join(s.countryNames(q.Countries), "、"))
		b.WriteString("的")
	}

	var names []string
	seen := make(map[string]bool)
	for _, st := range a.Statistics {
		if !seen[st.IndicatorName] {
			seen[st.IndicatorName] = true
			names = append(names, st.IndicatorName)
		}
	}
	if len(names) > 0 {
		b.WriteString(strings.Join(names, "、"))
	} else {
		b.WriteString("经济指标数据")
	}

	phrase := periodPhrase(q, "在%d年至%d年期间的表现。", "从%d年至今的表现。", "截至%d年的表现。")
	if phrase == "" {
		phrase = "的历史表现。"
	}
	b.WriteString(phrase)

	return b.String()
}

func statisticsSentence(stats []model.StatisticsRecord) string {
	var clauses []string
	for _, st := range stats {
		clauses = append(clauses,
			fmt.Sprintf("%s的%s平均值为%s", st.CountryName, st.IndicatorName, formatValue(st.Mean, st.Unit)),
			fmt.Sprintf("%s的最新%s为%s（%d年）", st.CountryName, st.IndicatorName, formatValue(st.Latest.Value, st.Unit), st.Latest.Date.Year()),
		)
	}
	if len(clauses) == 0 {
		return ""
	}
	return "主要统计数据显示，" + strings.Join(clauses, "；") + "。"
}

func trendSentence(trends []model.TrendRecord) string {
	var clauses []string
	for _, tr := range trends {
		clauses = append(clauses, fmt.Sprintf("%s的%s总体呈%s趋势", tr.CountryName, tr.IndicatorName, tr.Direction.Label()))
		if tr.Recent != nil && *tr.Recent != tr.Direction {
			clauses = append(clauses, fmt.Sprintf("%s的%s近期呈%s趋势", tr.CountryName, tr.IndicatorName, tr.Recent.Label()))
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	return "趋势分析表明，" + strings.Join(clauses, "；") + "。"
}

func comparisonSentence(c model.Comparison) string {
	switch c.Kind {
	case model.ComparisonCrossCountry:
		rankings := c.CrossCountry.Rankings
		if len(rankings) == 0 {
			return ""
		}
		sentence := fmt.Sprintf("在%s方面，%s表现最好", c.CrossCountry.IndicatorName, rankings[0].CountryName)
		if len(rankings) > 1 {
			sentence += fmt.Sprintf("，而%s表现相对较弱", rankings[len(rankings)-1].CountryName)
		}
		return sentence + "。"

	case model.ComparisonCrossIndicator:
		ci := c.CrossIndicator
		if len(ci.Changes) == 0 {
			return ""
		}
		top := ci.Changes[0]
		switch {
		case top.Unbounded && top.ChangePct > 0:
			return fmt.Sprintf("对于%s而言，%s从零基数起增长最快。", ci.CountryName, top.IndicatorName)
		case top.Unbounded:
			return fmt.Sprintf("对于%s而言，所有指标均由零基数转为下降，其中%s降幅最小。", ci.CountryName, top.IndicatorName)
		case top.ChangePct > 0:
			return fmt.Sprintf("对于%s而言，%s增长最快，增幅达%s。", ci.CountryName, top.IndicatorName, formatPct(top.ChangePct))
		case top.ChangePct < 0:
			return fmt.Sprintf("对于%s而言，%s下降最显著，降幅达%s。", ci.CountryName, top.IndicatorName, formatPct(top.ChangePct))
		default:
			return fmt.Sprintf("对于%s而言，%s保持不变。", ci.CountryName, top.IndicatorName)
		}
	}
	return ""
}

// findings lists statistics, trend and comparison observations in that order
func (s *Synthesizer) findings(a model.AnalysisResult) []string {
	findings := []string{}

	for _, st := range a.Statistics {
		findings = append(findings, fmt.Sprintf("%s的%s在分析期间最高达到%s，最低为%s",
			st.CountryName, st.IndicatorName, formatValue(st.Max, st.Unit), formatValue(st.Min, st.Unit)))

		if st.RecentChangePct != nil && math.Abs(*st.RecentChangePct) > s.cfg.SignificantChangePct {
			verb := "增长"
			if *st.RecentChangePct < 0 {
				verb = "下降"
			}
			findings = append(findings, fmt.Sprintf("%s的%s最近%s了%s，变化显著",
				st.CountryName, st.IndicatorName, verb, formatPct(*st.RecentChangePct)))
		}
	}

	for _, tr := range a.Trends {
		if len(tr.InflectionDates) > 0 {
			dates := make([]string, len(tr.InflectionDates))
			for i, d := range tr.InflectionDates {
				dates[i] = d.Format(dateLayout)
			}
			findings = append(findings, fmt.Sprintf("%s的%s在%s出现趋势拐点",
				tr.CountryName, tr.IndicatorName, strings.Join(dates, ", ")))
		}

		if tr.RSquared > s.cfg.StrongTrendR2 {
			findings = append(findings, fmt.Sprintf("%s的%s呈现强烈的%s趋势，相关性达%.2f",
				tr.CountryName, tr.IndicatorName, tr.Direction.Label(), tr.RSquared))
		}

		if tr.Recent != nil && *tr.Recent != tr.Direction {
			findings = append(findings, fmt.Sprintf("%s的%s总体趋势为%s，但近期趋势转为%s",
				tr.CountryName, tr.IndicatorName, tr.Direction.Label(), tr.Recent.Label()))
		}
	}

	switch a.Comparison.Kind {
	case model.ComparisonCrossCountry:
		cc := a.Comparison.CrossCountry
		if len(cc.Rankings) >= 2 && cc.Rankings[1].Value != 0 {
			top, second := cc.Rankings[0], cc.Rankings[1]
			gap := (top.Value - second.Value) / second.Value * 100
			findings = append(findings, fmt.Sprintf("在%s方面，%s领先%s %s",
				cc.IndicatorName, top.CountryName, second.CountryName, formatPct(gap)))
		}

	case model.ComparisonCrossIndicator:
		ci := a.Comparison.CrossIndicator
		if len(ci.Changes) >= 2 {
			best, worst := ci.Changes[0], ci.Changes[len(ci.Changes)-1]
			findings = append(findings, fmt.Sprintf("对于%s，%s表现最佳，而%s表现相对较弱",
				ci.CountryName, best.IndicatorName, worst.IndicatorName))
		}
	}

	return findings
}

// tables renders one table per series plus a statistics summary
func tables(a model.AnalysisResult) []model.DataTable {
	out := []model.DataTable{}

	for _, series := range a.Series {
		if series.Empty() {
			continue
		}
		t := model.DataTable{
			Title: fmt.Sprintf("%s - %s", series.CountryName, series.IndicatorName),
			Columns: []model.Column{
				{Key: "date", Label: "日期"},
				{Key: "value", Label: series.IndicatorName + "值"},
			},
		}
		for _, p := range series.Sorted() {
			t.Rows = append(t.Rows, []string{p.Date.Format(dateLayout), fmt.Sprintf("%.2f", p.Value)})
		}
		out = append(out, t)
	}

	if len(a.Statistics) > 0 {
		t := model.DataTable{
			Title: "统计数据摘要",
			Columns: []model.Column{
				{Key: "country", Label: "国家"},
				{Key: "indicator", Label: "指标"},
				{Key: "mean", Label: "平均值"},
				{Key: "median", Label: "中位数"},
				{Key: "min", Label: "最小值"},
				{Key: "max", Label: "最大值"},
			},
		}
		for _, st := range a.Statistics {
			t.Rows = append(t.Rows, []string{
				st.CountryName,
				st.IndicatorName,
				fmt.Sprintf("%.2f", st.Mean),
				fmt.Sprintf("%.2f", st.Median),
				fmt.Sprintf("%.2f", st.Min),
				fmt.Sprintf("%.2f", st.Max),
			})
		}
		out = append(out, t)
	}

	return out
}
