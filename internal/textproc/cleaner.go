// Package textproc provides text cleaning heuristics for documents that are
// about to be read aloud. The transforms are intentionally lightweight:
// scanned books and pasted PDFs carry page furniture and hard line wraps
// that sound terrible when synthesized verbatim.
package textproc

import (
	"regexp"
	"strings"
)

var (
	pageNumberRegex  = regexp.MustCompile(`^(page\s+\d+)|^\d{1,4}$`)
	hyphenBreakRegex = regexp.MustCompile(`(\w+)-\n(\w+)`)
	softWrapRegex    = regexp.MustCompile(`([^.!?;:"'\n])\n`)
	spaceRunRegex    = regexp.MustCompile("[ \t ]+")
)

// RemoveHeadersFooters drops lines that look like page furniture: bare page
// numbers ("Page 12", "37") and short all-caps running headers.
func RemoveHeadersFooters(text string) string {
	lines := strings.Split(text, "\n")
	filtered := make([]string, 0, len(lines))

	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			filtered = append(filtered, line)
			continue
		}

		if pageNumberRegex.MatchString(strings.ToLower(s)) {
			continue
		}

		// All-caps short headers (<=6 words).
		if isAllUpper(s) && len(strings.Fields(s)) <= 6 {
			continue
		}

		filtered = append(filtered, line)
	}

	return strings.Join(filtered, "\n")
}

// FixHyphenation repairs words split across line breaks ("impor-\ntant")
// and reflows lines that were wrapped mid-sentence.
func FixHyphenation(text string) string {
	text = hyphenBreakRegex.ReplaceAllString(text, "$1$2")
	// Lines ending without sentence punctuation were wrapped, not ended.
	text = softWrapRegex.ReplaceAllString(text, "$1 ")
	return text
}

// CollapseWhitespace normalizes runs of spaces, tabs, and non-breaking
// spaces to a single space and trims the result.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(spaceRunRegex.ReplaceAllString(text, " "))
}

// Clean runs the full cleaning pipeline on input text.
func Clean(text string) string {
	t := RemoveHeadersFooters(text)
	t = FixHyphenation(t)
	t = CollapseWhitespace(t)
	return t
}

// isAllUpper reports whether s contains at least one letter and no
// lowercase letters. strings.ToUpper comparison alone would treat
// digit-only lines as headers.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if (r >= 'A' && r <= 'Z') || (r >= 'À' && r <= 'Þ') {
			hasLetter = true
		}
	}
	return hasLetter && s == strings.ToUpper(s)
}
