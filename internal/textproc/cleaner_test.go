package textproc

import (
	"strings"
	"testing"
)

func TestRemoveHeadersFooters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		removed []string
		kept    []string
	}{
		{
			name:    "page number lines",
			input:   "Page 12\nSome real text here.\n37\nMore text.",
			removed: []string{"Page 12", "37"},
			kept:    []string{"Some real text here.", "More text."},
		},
		{
			name:    "all caps header",
			input:   "CHAPTER ONE OF THE BOOK\nIt was a dark night.",
			removed: []string{"CHAPTER ONE OF THE BOOK"},
			kept:    []string{"It was a dark night."},
		},
		{
			name:  "long all caps line kept",
			input: "THIS ALL CAPS LINE HAS FAR TOO MANY WORDS TO BE A HEADER\nBody.",
			kept:  []string{"THIS ALL CAPS LINE HAS FAR TOO MANY WORDS TO BE A HEADER"},
		},
		{
			name:  "blank lines preserved",
			input: "First paragraph.\n\nSecond paragraph.",
			kept:  []string{"First paragraph.", "", "Second paragraph."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveHeadersFooters(tt.input)
			for _, want := range tt.kept {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got %q", want, got)
				}
			}
			for _, gone := range tt.removed {
				for _, line := range strings.Split(got, "\n") {
					if strings.TrimSpace(line) == gone {
						t.Errorf("expected %q to be removed, got %q", gone, got)
					}
				}
			}
		})
	}
}

func TestFixHyphenation(t *testing.T) {
	got := FixHyphenation("This is an impor-\ntant line.")
	if !strings.Contains(got, "important") {
		t.Errorf("expected hyphenation repaired, got %q", got)
	}

	got = FixHyphenation("wrapped mid\nsentence here.")
	if strings.Contains(got, "mid\nsentence") {
		t.Errorf("expected soft wrap removed, got %q", got)
	}

	// Lines ending with sentence punctuation keep their break.
	got = FixHyphenation("A sentence.\nAnother one.")
	if !strings.Contains(got, ".\n") {
		t.Errorf("expected sentence break preserved, got %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  too   many\t\tspaces here  ")
	want := "too many spaces here"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCleanPipeline(t *testing.T) {
	input := "THIS IS A HEADER\nPage 1\nThis is an impor-\ntant line.\n\nAnother paragraph."
	got := Clean(input)

	if strings.Contains(got, "HEADER") {
		t.Errorf("header not removed: %q", got)
	}
	if strings.Contains(got, "Page 1") {
		t.Errorf("page number not removed: %q", got)
	}
	if !strings.Contains(got, "important") {
		t.Errorf("hyphenation not repaired: %q", got)
	}
}

func TestSplitNotes(t *testing.T) {
	t.Run("no heading", func(t *testing.T) {
		main, notes := SplitNotes("Just ordinary document text.")
		if notes != "" {
			t.Errorf("expected no notes, got %q", notes)
		}
		if main != "Just ordinary document text." {
			t.Errorf("main text altered: %q", main)
		}
	})

	t.Run("heading near start", func(t *testing.T) {
		main, notes := SplitNotes("Short intro.\n\nNotes\n- remember to test")
		if notes == "" {
			t.Fatal("expected a notes section")
		}
		if !strings.HasPrefix(notes, "Notes") {
			t.Errorf("notes should start at heading, got %q", notes)
		}
		if strings.Contains(main, "remember") {
			t.Errorf("notes leaked into main: %q", main)
		}
	})

	t.Run("long paragraph before heading suppresses split", func(t *testing.T) {
		long := strings.Repeat("Real document content sentence. ", 5)
		main, notes := SplitNotes(long + "\n\nEdge cases\nsome guidance")
		if notes != "" {
			t.Errorf("expected no split after long content, got notes %q", notes)
		}
		if !strings.Contains(main, "Edge cases") {
			t.Errorf("heading should remain in main: %q", main)
		}
	})

	t.Run("case insensitive headings", func(t *testing.T) {
		_, notes := SplitNotes("Intro.\n\nNEXT STEPS\ndo things")
		if notes == "" {
			t.Error("expected uppercase heading to match")
		}
	})
}
