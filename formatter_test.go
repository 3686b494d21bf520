package mbtichat

import (
	"math/rand"
	"strings"
	"testing"
)

func TestFormatStripsSelfIdentification(t *testing.T) {
	f := NewResponseFormatter(rand.New(rand.NewSource(1)))

	cases := []struct {
		typ  PersonalityType
		raw  string
		want string
	}{
		{"INTJ", "INTJ: I have analyzed the problem.", "I have analyzed the problem."},
		{"INTJ", "As an INTJ, I have analyzed the problem.", "I have analyzed the problem."},
		{"INTJ", "As an INTJ personality, I have analyzed the problem.", "I have analyzed the problem."},
		{"INTJ", "As an MBTI personality, I have analyzed the problem.", "I have analyzed the problem."},
		{"ISTJ", "As a ISTJ, facts matter here.", "facts matter here."},
		{"INTJ", "Response: the answer is 42.", "the answer is 42."},
		{"INTJ", "No prefix here at all.", "No prefix here at all."},
	}
	for _, tc := range cases {
		if got := f.Format(tc.raw, tc.typ); got != tc.want {
			t.Errorf("Format(%q, %s) = %q, want %q", tc.raw, tc.typ, got, tc.want)
		}
	}
}

func TestFormatStripsAtMostOnePrefix(t *testing.T) {
	f := NewResponseFormatter(rand.New(rand.NewSource(1)))
	// The longer prefix wins; the remaining "INTJ:" survives because only one
	// prefix is removed.
	got := f.Format("As an INTJ, INTJ: hello.", "INTJ")
	if got != "INTJ: hello." {
		t.Fatalf("got %q, want %q", got, "INTJ: hello.")
	}
}

func TestFormatEmphatic(t *testing.T) {
	f := NewResponseFormatter(rand.New(rand.NewSource(1)))

	// ENTP is emphatic but not emoji-styled, so output is deterministic.
	if got := f.Format("That is a bold claim", "ENTP"); got != "That is a bold claim!" {
		t.Fatalf("emphasis not added: %q", got)
	}
	if got := f.Format("That is a bold claim!", "ENTP"); got != "That is a bold claim!" {
		t.Fatalf("double emphasis: %q", got)
	}
	// An exclamation anywhere in the text counts as emphasis.
	if got := f.Format("Wow! That is bold", "ENTP"); got != "Wow! That is bold" {
		t.Fatalf("mid-text emphasis should suppress the suffix: %q", got)
	}
	if got := f.Format("Is that a bold claim?", "ENTP"); got != "Is that a bold claim?" {
		t.Fatalf("questions keep their mark: %q", got)
	}
	// Non-emphatic types are never modified.
	if got := f.Format("That is a bold claim", "INTJ"); got != "That is a bold claim" {
		t.Fatalf("non-emphatic type modified: %q", got)
	}
}

func TestFormatEmoji(t *testing.T) {
	f := NewResponseFormatter(rand.New(rand.NewSource(42)))

	sawEmoji, sawPlain := false, false
	for i := 0; i < 100; i++ {
		got := f.Format("Life is great!", "ENFP")
		if !strings.HasPrefix(got, "Life is great!") {
			t.Fatalf("emoji must be appended, not inserted: %q", got)
		}
		suffix := strings.TrimPrefix(got, "Life is great!")
		if suffix == "" {
			sawPlain = true
			continue
		}
		sawEmoji = true
		found := false
		for _, e := range emojiSet {
			if suffix == " "+e {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("suffix %q is not from the emoji set", suffix)
		}
	}
	if !sawEmoji || !sawPlain {
		t.Fatalf("emoji should appear with probability ~0.5: emoji=%v plain=%v", sawEmoji, sawPlain)
	}

	// Non-emoji types never get one.
	g := NewResponseFormatter(rand.New(rand.NewSource(42)))
	for i := 0; i < 50; i++ {
		if got := g.Format("Life is great!", "INTJ"); got != "Life is great!" {
			t.Fatalf("INTJ got decorated: %q", got)
		}
	}
}

func TestFormatSeededReproducible(t *testing.T) {
	a := NewResponseFormatter(rand.New(rand.NewSource(7)))
	b := NewResponseFormatter(rand.New(rand.NewSource(7)))
	for i := 0; i < 20; i++ {
		ra := a.Format("Having so much fun today!", "ESFP")
		rb := b.Format("Having so much fun today!", "ESFP")
		if ra != rb {
			t.Fatalf("iteration %d: same seed diverged: %q vs %q", i, ra, rb)
		}
	}
}

func TestFormatEmptyAndWhitespace(t *testing.T) {
	f := NewResponseFormatter(rand.New(rand.NewSource(1)))
	if got := f.Format("", "ENFP"); got != "" {
		t.Fatalf("empty input should stay empty, got %q", got)
	}
	if got := f.Format("   \n\t  ", "ENFP"); got != "" {
		t.Fatalf("whitespace input should collapse to empty, got %q", got)
	}
	if got := f.Format("  trimmed  ", "INTJ"); got != "trimmed" {
		t.Fatalf("whitespace not trimmed: %q", got)
	}
}
