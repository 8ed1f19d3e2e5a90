package textproc

import (
	"regexp"
	"strings"
)

// Thresholds for notes-section detection. A heading only counts as a notes
// section when it appears before any substantial document content.
const (
	// LongParagraphLength is the minimum length of a paragraph that marks
	// preceding text as real document content.
	LongParagraphLength = 80
	// NotesCharCutoff is how far into the document a notes heading may
	// appear and still be treated as guidance rather than content.
	NotesCharCutoff = 2000
	// NotesLineCutoff is the equivalent cutoff in lines.
	NotesLineCutoff = 20
)

var (
	notesHeadingRegex = regexp.MustCompile(
		`(?im)^\s*(edge cases|notes|next steps|next steps & polishing|edge cases and next improvements).*$`)
	paragraphBreakRegex = regexp.MustCompile(`\n{2,}`)
)

// SplitNotes separates a trailing or embedded guidance section (headings
// like "Notes", "Edge cases", "Next steps") from document text. It returns
// the main text and the notes text; notes is empty when no heading is
// found or when the heading sits after substantial content.
func SplitNotes(text string) (main, notes string) {
	loc := notesHeadingRegex.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}

	idx := loc[0]
	before := text[:idx]

	// A long paragraph before the heading means the heading is part of the
	// document itself, not authoring guidance.
	for _, p := range paragraphBreakRegex.Split(before, -1) {
		if len(strings.TrimSpace(p)) >= LongParagraphLength {
			return text, ""
		}
	}

	linesBefore := strings.Count(before, "\n")
	if idx <= NotesCharCutoff || linesBefore <= NotesLineCutoff {
		main = strings.TrimRight(before, "\n")
		notes = strings.TrimLeft(text[idx:], "\n")
		return main, notes
	}

	return text, ""
}
