package mbtichat

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Conversation Composer — fan-out chat and group discussion
// ──────────────────────────────────────────────

// Reply is one persona's answer in a fan-out response.
type Reply struct {
	Type PersonalityType
	Text string
}

// DiscussionEntry is one line of a group discussion. The first entry is the
// header (empty Type, Round 0); participant entries carry Round 1..n.
type DiscussionEntry struct {
	Type  PersonalityType
	Text  string
	Round int
}

// String renders the entry in display form. Round tags appear only from
// round 2 onward.
func (e DiscussionEntry) String() string {
	if e.Type == "" {
		return e.Text
	}
	if e.Round >= 2 {
		return fmt.Sprintf("%s (Round %d): %s", e.Type, e.Round, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Text)
}

// Composer builds multi-party interactions on top of the orchestrator,
// threading prior-round context into subsequent prompts.
type Composer struct {
	orch     *Orchestrator
	rng      *rand.Rand
	rngMu    sync.Mutex
	parallel bool
}

// NewComposer creates a composer. A nil rng gets a time-seeded one; inject
// a seeded source for reproducible participant sampling.
func NewComposer(orch *Orchestrator, rng *rand.Rand) *Composer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Composer{orch: orch, rng: rng}
}

// SetParallel enables concurrent generation for calls with no data
// dependency (fan-out and same-round discussion turns). Output order is
// restored by participant index, never by completion order. Cross-round
// calls stay sequential regardless.
func (c *Composer) SetParallel(on bool) {
	c.parallel = on
}

// MultiRespond collects responses from several personalities. A non-empty
// include list, filtered to known types, wins over count and keeps the
// caller's order; otherwise count distinct types are sampled at random
// (clamped to the catalog size).
func (c *Composer) MultiRespond(ctx context.Context, query string, include []PersonalityType, count int) []Reply {
	selected := c.selectTypes(include, count)

	replies := make([]Reply, len(selected))
	c.eachIndexed(len(selected), func(i int) {
		replies[i] = Reply{Type: selected[i], Text: c.orch.Respond(ctx, selected[i], query)}
	})
	return replies
}

// RepliesAsMap converts fan-out replies to a type-keyed map.
func RepliesAsMap(replies []Reply) map[PersonalityType]string {
	m := make(map[PersonalityType]string, len(replies))
	for _, r := range replies {
		m[r.Type] = r.Text
	}
	return m
}

// Discuss runs a multi-round group discussion. Round 1: every participant
// answers the topic directly. Later rounds: each participant reacts to the
// other participants' immediately preceding-round responses (its own reply
// is excluded, and only the previous round is visible). Missing
// participants default to 4 random distinct types; rounds is clamped to at
// least 1.
func (c *Composer) Discuss(ctx context.Context, topic string, participants []PersonalityType, rounds int) []DiscussionEntry {
	if len(participants) == 0 {
		participants = c.sample(4)
	}
	if rounds < 1 {
		rounds = 1
	}

	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = string(p)
	}
	entries := []DiscussionEntry{{
		Text: fmt.Sprintf("Group discussion on: %s\nParticipants: %s", topic, strings.Join(names, ", ")),
	}}

	prev := make(map[PersonalityType]string, len(participants))
	roundTexts := make([]string, len(participants))

	c.eachIndexed(len(participants), func(i int) {
		roundTexts[i] = c.orch.Respond(ctx, participants[i], topic)
	})
	for i, p := range participants {
		prev[p] = roundTexts[i]
		entries = append(entries, DiscussionEntry{Type: p, Text: roundTexts[i], Round: 1})
	}

	for round := 2; round <= rounds; round++ {
		c.eachIndexed(len(participants), func(i int) {
			prompt := discussionPrompt(topic, participants[i], participants, prev)
			roundTexts[i] = c.orch.Respond(ctx, participants[i], prompt)
		})

		next := make(map[PersonalityType]string, len(participants))
		for i, p := range participants {
			next[p] = roundTexts[i]
			entries = append(entries, DiscussionEntry{Type: p, Text: roundTexts[i], Round: round})
		}
		prev = next
	}

	return entries
}

// discussionPrompt builds the react-to-others prompt for one participant:
// the topic plus every other participant's previous-round reply.
func discussionPrompt(topic string, speaker PersonalityType, participants []PersonalityType, prev map[PersonalityType]string) string {
	var lines []string
	for _, other := range participants {
		if other == speaker {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", other, prev[other]))
	}
	return fmt.Sprintf("Topic: %s\n\nHere are comments from other MBTI personalities:\n%s\n\nHow would you (as an %s) respond to these comments?",
		topic, strings.Join(lines, "\n"), speaker)
}

// selectTypes resolves the fan-out participant set.
func (c *Composer) selectTypes(include []PersonalityType, count int) []PersonalityType {
	var selected []PersonalityType
	for _, t := range include {
		if IsKnownType(t) {
			selected = append(selected, t)
		}
	}
	if len(selected) > 0 {
		return selected
	}
	return c.sample(count)
}

// sample draws n distinct types uniformly at random, clamped to [1, 16].
func (c *Composer) sample(n int) []PersonalityType {
	all := AllTypes()
	if n > len(all) {
		n = len(all)
	}
	if n < 1 {
		n = 1
	}

	c.rngMu.Lock()
	perm := c.rng.Perm(len(all))
	c.rngMu.Unlock()

	selected := make([]PersonalityType, n)
	for i := 0; i < n; i++ {
		selected[i] = all[perm[i]]
	}
	return selected
}

// eachIndexed runs fn for each index, concurrently when parallel mode is
// on. Results are written by index, so display order never depends on
// completion order.
func (c *Composer) eachIndexed(n int, fn func(i int)) {
	if !c.parallel || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			fn(i)
		}(i)
	}
	wg.Wait()
}
