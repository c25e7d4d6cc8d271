package analyze

import (
	"fmt"

	"github.com/ppiankov/macrolens/internal/model"
)

// buildChart picks a layout from the data shape and a trace geometry from the hint
func buildChart(groups []*group, hint model.ChartHint) *model.ChartSpec {
	if hint == "" {
		hint = model.ChartLine
	}
	countries, indicators := distinct(groups)

	switch {
	case len(indicators) == 1:
		return overlayChart(groups, hint)
	case len(countries) == 1:
		return panelChart(groups, hint)
	default:
		return traceChart(groups, hint)
	}
}

// overlayChart draws one trace per country on a single panel. Bar and pie compare
// only the latest point of each country.
func overlayChart(groups []*group, hint model.ChartHint) *model.ChartSpec {
	first := groups[0]
	spec := &model.ChartSpec{
		Layout:   model.LayoutOverlay,
		Geometry: hint,
		XAxis:    "日期",
	}
	panel := model.ChartPanel{YAxis: axisLabel(first)}

	switch hint {
	case model.ChartBar, model.ChartPie:
		spec.Title = fmt.Sprintf("%s 最新值比较", first.indicatorName)
		spec.XAxis = "国家"
		trace := model.ChartTrace{Name: first.indicatorName, Mode: traceMode(hint)}
		for _, g := range groups {
			latest := g.last()
			trace.Points = append(trace.Points, model.ChartPoint{
				Label: g.countryName,
				Date:  latest.Date,
				Value: latest.Value,
			})
		}
		panel.Traces = []model.ChartTrace{trace}

	default:
		switch hint {
		case model.ChartScatter:
			spec.Title = fmt.Sprintf("%s 散点图", first.indicatorName)
		case model.ChartLine:
			spec.Title = fmt.Sprintf("%s 趋势比较", first.indicatorName)
		default:
			spec.Title = fmt.Sprintf("%s 趋势", first.indicatorName)
		}
		for _, g := range groups {
			panel.Traces = append(panel.Traces, timeTrace(g.countryName, g, hint))
		}
	}

	spec.Panels = []model.ChartPanel{panel}
	return spec
}

// panelChart draws one panel per indicator of a single country over a shared time axis
func panelChart(groups []*group, hint model.ChartHint) *model.ChartSpec {
	country := groups[0].countryName
	spec := &model.ChartSpec{
		Layout:     model.LayoutPanels,
		Geometry:   hint,
		Title:      fmt.Sprintf("%s 多指标分析", country),
		XAxis:      "日期",
		SharedTime: true,
	}

	for _, g := range groups {
		spec.Panels = append(spec.Panels, model.ChartPanel{
			Title:  fmt.Sprintf("%s (%s)", g.indicatorName, country),
			YAxis:  axisLabel(g),
			Traces: []model.ChartTrace{timeTrace(g.indicatorName, g, hint)},
		})
	}
	return spec
}

// traceChart draws one trace per (country, indicator) pair on one panel
func traceChart(groups []*group, hint model.ChartHint) *model.ChartSpec {
	panel := model.ChartPanel{YAxis: "值"}
	for _, g := range groups {
		name := fmt.Sprintf("%s - %s", g.countryName, g.indicatorName)
		panel.Traces = append(panel.Traces, timeTrace(name, g, hint))
	}

	return &model.ChartSpec{
		Layout:   model.LayoutTraces,
		Geometry: hint,
		Title:    "多指标多国家数据",
		XAxis:    "日期",
		Panels:   []model.ChartPanel{panel},
	}
}

func timeTrace(name string, g *group, hint model.ChartHint) model.ChartTrace {
	trace := model.ChartTrace{Name: name, Mode: traceMode(hint)}
	for _, p := range g.points {
		trace.Points = append(trace.Points, model.ChartPoint{
			Label: p.Date.Format("2006"),
			Date:  p.Date,
			Value: p.Value,
		})
	}
	return trace
}

func traceMode(hint model.ChartHint) string {
	switch hint {
	case model.ChartScatter:
		return "markers"
	case model.ChartBar:
		return "bar"
	case model.ChartPie:
		return "pie"
	case model.ChartHeatmap:
		return "heatmap"
	default:
		return "lines+markers"
	}
}

func axisLabel(g *group) string {
	if g.unit != "" {
		return g.unit
	}
	return g.indicatorName
}
