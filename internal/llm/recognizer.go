package llm

import (
	"context"
	"fmt"
	"strings"
)

const recognizerSystemPrompt = "You extract place names from short questions. You never explain."

// Recognizer finds locations in a question with an LLM. It satisfies
// parse.LocationRecognizer and is meant to sit behind the offline gazetteer.
type Recognizer struct {
	provider  Provider
	maxTokens int
}

// NewRecognizer creates a recognizer backed by provider
func NewRecognizer(provider Provider) *Recognizer {
	return &Recognizer{provider: provider, maxTokens: 100}
}

// Recognize returns one country name (in English) per location mentioned in text
func (r *Recognizer) Recognize(ctx context.Context, text string) ([]string, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	prompt := fmt.Sprintf(`List every country, region or city mentioned in the question below.
For each one, output the English name of the country it belongs to, one per line.
Output NONE if there are no locations.

Question: %s`, text)

	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System:    recognizerSystemPrompt,
		Prompt:    prompt,
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("recognize locations: %w", err)
	}

	return parseLocationLines(resp.Text), nil
}

// parseLocationLines reads one name per line, dropping list markers and NONE
func parseLocationLines(text string) []string {
	seen := make(map[string]bool)
	var spans []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.Trim(line, " \t\"'`.,;")
		if line == "" || strings.EqualFold(line, "none") {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		spans = append(spans, line)
	}
	return spans
}
