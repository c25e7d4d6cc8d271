package catalog

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// synonym is a lowercased lookup phrase pointing at a catalog entry
type synonym struct {
	text  string
	entry int
	runes int
	ascii bool
}

func newSynonym(s string, entry int) synonym {
	s = strings.ToLower(s)
	return synonym{
		text:  s,
		entry: entry,
		runes: utf8.RuneCountInString(s),
		ascii: isASCII(s),
	}
}

// sortSynonyms orders longest phrases first; equal lengths keep catalog order
func sortSynonyms(syns []synonym) {
	sort.SliceStable(syns, func(i, j int) bool {
		return syns[i].runes > syns[j].runes
	})
}

// match scans text for every synonym. Longer synonyms claim their span first and
// mask it, so a shorter synonym nested inside a longer one does not match again.
// ASCII synonyms only match on word boundaries. The returned entry indexes are
// deduplicated and in catalog order.
func match(text string, syns []synonym, entries int) []int {
	if text == "" || len(syns) == 0 {
		return nil
	}

	masked := make([]bool, len(text))
	hit := make([]bool, entries)

	for _, syn := range syns {
		if syn.text == "" {
			continue
		}
		for from := 0; from < len(text); {
			idx := strings.Index(text[from:], syn.text)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(syn.text)
			from = start + 1

			if anyMasked(masked[start:end]) {
				continue
			}
			if syn.ascii && !onWordBoundary(text, start, end) {
				continue
			}

			for i := start; i < end; i++ {
				masked[i] = true
			}
			hit[syn.entry] = true
		}
	}

	var out []int
	for i, ok := range hit {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// containsWord reports whether word occurs in text, honoring word boundaries for ASCII words
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	ascii := isASCII(word)
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		if !ascii || onWordBoundary(text, start, start+len(word)) {
			return true
		}
		from = start + 1
	}
	return false
}

func anyMasked(span []bool) bool {
	for _, m := range span {
		if m {
			return true
		}
	}
	return false
}

// onWordBoundary requires that the bytes around [start, end) are not ASCII letters.
// Digits and non-ASCII runes (e.g. CJK) count as boundaries.
func onWordBoundary(text string, start, end int) bool {
	if start > 0 && isASCIILetter(text[start-1]) {
		return false
	}
	if end < len(text) && isASCIILetter(text[end]) {
		return false
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
