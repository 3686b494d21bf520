package mbtichat

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Response Formatter — local post-processing (no LLM cost)
// ──────────────────────────────────────────────
//
// Applied to every reply, external or simulated, so degraded responses are
// indistinguishable in format from real ones.

// emojiSet is the fixed pool sampled for emoji-styled types.
var emojiSet = []string{"😊", "✨", "💫", "🌟", "💡", "🎉", "🌈"}

// ResponseFormatter strips meta-commentary prefixes and applies per-type
// stylistic touches. The random source is injectable so emoji selection is
// reproducible in tests.
type ResponseFormatter struct {
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewResponseFormatter creates a formatter. A nil rng gets a time-seeded one.
func NewResponseFormatter(rng *rand.Rand) *ResponseFormatter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ResponseFormatter{rng: rng}
}

// stripPrefixes returns the self-identification prefixes to remove for a
// type, longest first so the most specific pattern wins.
func stripPrefixes(t PersonalityType) []string {
	code := string(t)
	prefixes := []string{
		code + ":",
		"As an MBTI personality, ",
		"As an " + code + " personality, ",
		"As an " + code + ", ",
		"As a " + code + ", ",
		"Response: ",
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return prefixes
}

// Format post-processes raw text for a type. Steps, in order:
//  1. strip at most one leading self-identifying prefix (longest match wins)
//  2. emphatic types get a trailing "!" when the text has neither "!" nor
//     a trailing "?"
//  3. emoji types get, with probability 0.5, one emoji from the fixed set
//
// Empty input is returned unchanged. Never fails.
func (f *ResponseFormatter) Format(raw string, t PersonalityType) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	for _, prefix := range stripPrefixes(t) {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	style := Profile(t).Style

	if style.Emphatic && !strings.Contains(text, "!") && !strings.HasSuffix(text, "?") {
		text += "!"
	}

	if style.Emoji && f.flip() {
		text += " " + f.pickEmoji()
	}

	return text
}

func (f *ResponseFormatter) flip() bool {
	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return f.rng.Float64() < 0.5
}

func (f *ResponseFormatter) pickEmoji() string {
	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return emojiSet[f.rng.Intn(len(emojiSet))]
}
