// Package segment splits cleaned text into ordered chunks for incremental
// synthesis. Two modes exist: sentence splitting for short-form streaming,
// and paragraph splitting for long documents where per-chunk model overhead
// dominates.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

var paragraphBreakRegex = regexp.MustCompile(`\n{2,}`)

// Mode selects the chunking granularity.
type Mode int

const (
	// BySentence splits on terminal punctuation followed by whitespace.
	BySentence Mode = iota
	// ByParagraph splits on blank-line boundaries.
	ByParagraph
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case BySentence:
		return "sentence"
	case ByParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Chunk is a single unit of text submitted to the TTS engine. Index is
// 1-based; error reports reference it directly.
type Chunk struct {
	Index int
	Text  string
}

// Split chunks text using the given mode. Empty or whitespace-only input
// yields a nil slice, which callers treat as a no-op success.
func Split(text string, mode Mode) []Chunk {
	var parts []string
	switch mode {
	case ByParagraph:
		parts = splitParagraphs(text)
	default:
		parts = splitSentences(text)
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks) + 1, Text: p})
	}

	if len(chunks) == 0 {
		return nil
	}
	return chunks
}

// splitSentences breaks text on '.', '!', '?' followed by whitespace. The
// punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Swallow runs like "?!" or "...".
		end := i + 1
		for end < len(runes) && (runes[end] == '.' || runes[end] == '!' || runes[end] == '?') {
			end++
		}

		// Only a boundary when whitespace (or end of text) follows.
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}

		sentences = append(sentences, string(runes[start:end]))
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		start = end
		i = end - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}

// splitParagraphs breaks text on blank lines.
func splitParagraphs(text string) []string {
	return paragraphBreakRegex.Split(text, -1)
}
