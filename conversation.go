package mbtichat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// Conversation records — session-scoped chat history
// ──────────────────────────────────────────────

// SpeakerUser marks an entry written by the human side of a session.
const SpeakerUser = "user"

// ConversationEntry is one line of a session history: either a user message
// (Speaker == SpeakerUser) or a persona reply (Speaker == the type code,
// Round set for group-discussion replies from round 2 onward).
type ConversationEntry struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	Round   int       `json:"round,omitempty"`
	At      time.Time `json:"at"`
}

// UserEntry builds a user message entry.
func UserEntry(text string) ConversationEntry {
	return ConversationEntry{Speaker: SpeakerUser, Text: text, At: time.Now()}
}

// PersonaEntry builds a persona reply entry.
func PersonaEntry(t PersonalityType, text string, round int) ConversationEntry {
	return ConversationEntry{Speaker: string(t), Text: text, Round: round, At: time.Now()}
}

// ConversationLog is an append-only record of one discussion or chat
// session. It is owned by a single caller and not safe for concurrent use.
type ConversationLog struct {
	ID      string
	entries []ConversationEntry
}

// NewConversationLog creates an empty log with a fresh session ID.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{ID: uuid.NewString()}
}

// Append adds an entry.
func (l *ConversationLog) Append(e ConversationEntry) {
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the recorded entries in order.
func (l *ConversationLog) Entries() []ConversationEntry {
	result := make([]ConversationEntry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Len returns the number of entries.
func (l *ConversationLog) Len() int { return len(l.entries) }

// ConversationStore is the pluggable persistence backend for session
// histories. Implementations: InMemoryConversationStore and
// store.RedisConversationStore.
type ConversationStore interface {
	Append(ctx context.Context, sessionID string, e ConversationEntry) error
	// History returns the most recent entries in order; limit <= 0 means all.
	History(ctx context.Context, sessionID string, limit int) ([]ConversationEntry, error)
	Clear(ctx context.Context, sessionID string) error
}

// InMemoryConversationStore is a thread-safe in-memory ConversationStore
// for development. Data is lost on restart.
type InMemoryConversationStore struct {
	mu       sync.RWMutex
	sessions map[string][]ConversationEntry
}

// NewInMemoryConversationStore creates an empty store.
func NewInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{sessions: make(map[string][]ConversationEntry)}
}

func (s *InMemoryConversationStore) Append(ctx context.Context, sessionID string, e ConversationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], e)
	return nil
}

func (s *InMemoryConversationStore) History(ctx context.Context, sessionID string, limit int) ([]ConversationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.sessions[sessionID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	result := make([]ConversationEntry, len(entries))
	copy(result, entries)
	return result, nil
}

func (s *InMemoryConversationStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
