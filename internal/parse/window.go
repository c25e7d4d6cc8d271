package parse

import (
	"sort"
	"strconv"
	"time"

	"github.com/ppiankov/macrolens/internal/model"
)

// relativeCue maps a phrase to a window ending a fixed number of years back
type relativeCue struct {
	terms     []string
	startBack int
	endBack   int
}

// Checked in order; the first cue present wins
var relativeCues = []relativeCue{
	{terms: []string{"过去十年", "近十年", "last decade", "past decade", "last ten years", "last 10 years", "past 10 years"}, startBack: 10},
	{terms: []string{"过去五年", "近五年", "last five years", "past five years", "last 5 years", "past 5 years"}, startBack: 5},
	{terms: []string{"去年", "last year"}, startBack: 1, endBack: 1},
}

var sinceTerms = []string{"以来", "至今", "since", "onwards", "onward"}

// window is a resolved [start, end] pair of calendar years
type window struct {
	start, end int
	defaulted  bool
}

func (w window) bounds() (*time.Time, *time.Time) {
	start := model.YearStart(w.start)
	end := model.YearEnd(w.end)
	return &start, &end
}

// extractWindow infers the year window from normalized text
func extractWindow(text string, currentYear, defaultYears int) window {
	years := yearTokens(text)

	switch {
	case len(years) == 1:
		year := years[0]
		if containsAny(text, sinceTerms) {
			end := currentYear
			if year > end {
				end = year
			}
			return window{start: year, end: end}
		}
		return window{start: year, end: year}

	case len(years) >= 2:
		sort.Ints(years)
		return window{start: years[0], end: years[len(years)-1]}
	}

	for _, cue := range relativeCues {
		if containsAny(text, cue.terms) {
			return window{start: currentYear - cue.startBack, end: currentYear - cue.endBack}
		}
	}

	return window{start: currentYear - defaultYears, end: currentYear, defaulted: true}
}

// yearTokens returns every standalone run of four digits between 1900 and 2099.
// Longer digit runs ("20201") are not years.
func yearTokens(text string) []int {
	var years []int
	for i := 0; i < len(text); {
		if !isDigit(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if j-i == 4 {
			if year, err := strconv.Atoi(text[i:j]); err == nil && year >= 1900 && year <= 2099 {
				years = append(years, year)
			}
		}
		i = j
	}
	return years
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
