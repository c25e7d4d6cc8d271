package llm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/macrolens/internal/model"
)

var numberPattern = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)

// smallIntegerLimit allows counts and ordinals ("3 countries", "第2") without listing them
const smallIntegerLimit = 12

// ExtractNumbers returns the distinct figures in text, normalized, in order of appearance
func ExtractNumbers(text string) []string {
	matches := numberPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, m := range matches {
		n, ok := normalizeNumber(m)
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		unique = append(unique, n)
	}
	return unique
}

// ReportNumbers collects every figure printed in the report: title, summary,
// findings, table cells and the query window years
func ReportNumbers(report model.Report) []string {
	texts := []string{report.Title, report.Summary}
	texts = append(texts, report.KeyFindings...)
	for _, t := range report.Tables {
		texts = append(texts, t.Title)
		for _, row := range t.Rows {
			texts = append(texts, row...)
		}
	}
	if y := report.Query.StartYear(); y != 0 {
		texts = append(texts, strconv.Itoa(y))
	}
	if y := report.Query.EndYear(); y != 0 {
		texts = append(texts, strconv.Itoa(y))
	}

	return ExtractNumbers(strings.Join(texts, "\n"))
}

// unlistedNumbers returns the cited figures that are neither in allowed nor
// small integers
func unlistedNumbers(cited, allowed []string) []string {
	allow := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		if n, ok := normalizeNumber(a); ok {
			allow[n] = true
			// "-3.2" in the report may be written as "3.2" with a word for the sign
			allow[strings.TrimPrefix(n, "-")] = true
		}
	}

	var leaked []string
	for _, c := range cited {
		if allow[c] || allow[strings.TrimPrefix(c, "-")] || isSmallInteger(c) {
			continue
		}
		leaked = append(leaked, c)
	}
	return leaked
}

// normalizeNumber strips grouping commas, a leading plus and trailing
// fractional zeros so "1,234.50" and "1234.5" compare equal
func normalizeNumber(s string) (string, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s, true
}

func isSmallInteger(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= smallIntegerLimit
}
