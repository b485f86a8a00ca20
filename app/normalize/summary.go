package normalize

import (
	"strings"
	"unicode"
)

const (
	// minSentenceLength filters out fragments produced by abbreviations
	// and decorative punctuation.
	minSentenceLength = 20

	DefaultSummarySentences = 3
	DefaultSummaryLength    = 500
)

// Summary reduces free text to its first maxSentences sentences, capped at
// maxLen characters. Empty input yields an empty summary.
func Summary(text string, maxSentences, maxLen int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	sentences := SplitSentences(text)

	kept := make([]string, 0, maxSentences)
	for _, s := range sentences {
		if len(s) <= minSentenceLength {
			continue
		}
		kept = append(kept, s)
		if len(kept) == maxSentences {
			break
		}
	}

	summary := strings.Join(kept, " ")
	if summary == "" {
		// No usable sentences, fall back to a plain prefix.
		summary = text
	}

	if maxLen > 0 {
		// Cap on a rune boundary, a byte slice could split a multi-byte
		// character and persist invalid UTF-8.
		if runes := []rune(summary); len(runes) > maxLen {
			summary = string(runes[:maxLen])
		}
	}

	return strings.TrimSpace(summary)
}

// SplitSentences splits text on sentence-ending punctuation followed by
// whitespace. The terminator stays attached to its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])

		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()

		// Skip the whitespace run between sentences.
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
