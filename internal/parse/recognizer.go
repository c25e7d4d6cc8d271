package parse

import (
	"context"
	"strings"
)

// LocationRecognizer finds location mentions in text that the catalog synonyms missed.
// Returned spans are mapped back to countries by the parser; they do not need to be
// canonical. Errors are never fatal to parsing.
type LocationRecognizer interface {
	Recognize(ctx context.Context, text string) ([]string, error)
}

// Gazetteer is an offline recognizer that resolves cities and capitals to the
// country they belong to
type Gazetteer struct {
	places map[string]string // lowercased place -> country span
}

// DefaultPlaces maps well-known cities to a country name the catalog understands
var DefaultPlaces = map[string]string{
	"北京": "中国", "上海": "中国", "深圳": "中国", "beijing": "china", "shanghai": "china",
	"华盛顿": "美国", "纽约": "美国", "washington": "united states", "new york": "united states",
	"新德里": "印度", "孟买": "印度", "new delhi": "india", "mumbai": "india",
	"东京": "日本", "大阪": "日本", "tokyo": "japan", "osaka": "japan",
	"柏林": "德国", "法兰克福": "德国", "berlin": "germany", "frankfurt": "germany",
	"巴黎": "法国", "paris": "france",
	"伦敦": "英国", "london": "united kingdom",
	"渥太华": "加拿大", "多伦多": "加拿大", "ottawa": "canada", "toronto": "canada",
	"堪培拉": "澳大利亚", "悉尼": "澳大利亚", "canberra": "australia", "sydney": "australia",
	"首尔": "韩国", "seoul": "korea",
	"巴西利亚": "巴西", "圣保罗": "巴西", "brasilia": "brazil", "sao paulo": "brazil",
}

// NewGazetteer builds a gazetteer; nil places selects DefaultPlaces
func NewGazetteer(places map[string]string) *Gazetteer {
	if places == nil {
		places = DefaultPlaces
	}
	g := &Gazetteer{places: make(map[string]string, len(places))}
	for place, country := range places {
		g.places[strings.ToLower(place)] = country
	}
	return g
}

// Recognize returns the country span for every known place in text
func (g *Gazetteer) Recognize(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text = strings.ToLower(text)
	var spans []string
	for place, country := range g.places {
		if strings.Contains(text, place) {
			spans = append(spans, country)
		}
	}
	return spans, nil
}

// Chain tries each recognizer in order and returns the first non-empty result.
// A failing recognizer is skipped.
type Chain []LocationRecognizer

// Recognize implements LocationRecognizer
func (c Chain) Recognize(ctx context.Context, text string) ([]string, error) {
	var lastErr error
	for _, r := range c {
		spans, err := r.Recognize(ctx, text)
		if err != nil {
			lastErr = err
			continue
		}
		if len(spans) > 0 {
			return spans, nil
		}
	}
	return nil, lastErr
}
