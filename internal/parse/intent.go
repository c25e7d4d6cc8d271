package parse

import "github.com/ppiankov/macrolens/internal/model"

var comparisonTerms = []string{
	"比较", "compare", "对比", "versus", "vs", "相比", "compared to", "comparison", "与", "和", "及", "比",
}

var trendTerms = []string{
	"趋势", "trend", "变化", "change", "增长", "growth", "演变", "evolution", "发展", "development", "历史", "history",
}

// chartKeywords is in priority order; the first hint with a matching keyword wins
var chartKeywords = []struct {
	hint  model.ChartHint
	terms []string
}{
	{model.ChartBar, []string{"柱状图", "bar chart", "柱图"}},
	{model.ChartPie, []string{"饼图", "pie chart"}},
	{model.ChartScatter, []string{"散点图", "scatter"}},
	{model.ChartHeatmap, []string{"热力图", "heat map", "heatmap"}},
}

func isComparison(text string) bool {
	return containsAny(text, comparisonTerms)
}

func isTrend(text string) bool {
	return containsAny(text, trendTerms)
}

func chartHint(text string) model.ChartHint {
	for _, kw := range chartKeywords {
		if containsAny(text, kw.terms) {
			return kw.hint
		}
	}
	return model.ChartLine
}
