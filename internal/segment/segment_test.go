package segment

import (
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "two sentences",
			input:    "Hello there. This is Reader Elf.",
			expected: []string{"Hello there.", "This is Reader Elf."},
		},
		{
			name:     "mixed punctuation",
			input:    "Really? Yes! Of course.",
			expected: []string{"Really?", "Yes!", "Of course."},
		},
		{
			name:     "combined punctuation run",
			input:    "What?! Then it happened.",
			expected: []string{"What?!", "Then it happened."},
		},
		{
			name:     "no terminal punctuation",
			input:    "a fragment without an ending",
			expected: []string{"a fragment without an ending"},
		},
		{
			name:     "punctuation inside word is not a boundary",
			input:    "Version 1.5 shipped today. Everyone cheered.",
			expected: []string{"Version 1.5 shipped today.", "Everyone cheered."},
		},
		{
			name:     "trailing whitespace",
			input:    "  One.  Two.  ",
			expected: []string{"One.", "Two."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.input, BySentence)
			if len(chunks) != len(tt.expected) {
				t.Fatalf("expected %d chunks, got %d: %v", len(tt.expected), len(chunks), chunks)
			}
			for i, c := range chunks {
				if c.Text != tt.expected[i] {
					t.Errorf("chunk %d: expected %q, got %q", i, tt.expected[i], c.Text)
				}
				if c.Index != i+1 {
					t.Errorf("chunk %d: expected index %d, got %d", i, i+1, c.Index)
				}
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	input := "First paragraph with some text.\n\nSecond paragraph here."
	chunks := Split(input, ByParagraph)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "First paragraph with some text." {
		t.Errorf("unexpected first chunk: %q", chunks[0].Text)
	}
	if chunks[1].Text != "Second paragraph here." {
		t.Errorf("unexpected second chunk: %q", chunks[1].Text)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	for _, mode := range []Mode{BySentence, ByParagraph} {
		for _, input := range []string{"", "   ", "\n\n\n"} {
			if chunks := Split(input, mode); chunks != nil {
				t.Errorf("mode %v input %q: expected nil, got %v", mode, input, chunks)
			}
		}
	}
}

func TestSplitPreservesOrderAndContent(t *testing.T) {
	input := "Alpha came first. Beta came second. Gamma came third."
	chunks := Split(input, BySentence)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	// No chunk may be empty or whitespace-only.
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			t.Errorf("chunk %d is empty", c.Index)
		}
	}

	// Rejoining with single spaces reproduces the cleaned input.
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	if rejoined := strings.Join(parts, " "); rejoined != input {
		t.Errorf("round trip mismatch:\n  input:    %q\n  rejoined: %q", input, rejoined)
	}
}
