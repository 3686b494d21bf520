package mbtichat

import (
	"context"
	"sync"
)

// ──────────────────────────────────────────────
// Knowledge store — reference passages for retrieval augmentation
// ──────────────────────────────────────────────

// KnowledgeCategories are the aspects of a personality the reference corpus
// covers. Stored as passage metadata; retrieval does not filter on them.
var KnowledgeCategories = []string{
	"communication_style",
	"cognitive_functions",
	"values_and_motivations",
	"stress_reactions",
	"career_preferences",
	"relationship_patterns",
}

// Passage is one reference snippet about a personality type.
type Passage struct {
	Content  string
	Type     PersonalityType
	Category string
}

// KnowledgeStore is the opaque retrieval service consumed by the
// retrieval-augmented provider. Implementations: store.WeaviateStore
// (production) and InMemoryKnowledgeStore (simulation/dev).
type KnowledgeStore interface {
	// Search returns up to topK passages for the given type, best first.
	Search(ctx context.Context, t PersonalityType, topK int) ([]Passage, error)
	// Ready reports whether the store is initialized and searchable.
	Ready(ctx context.Context) bool
}

// InMemoryKnowledgeStore is a thread-safe in-memory KnowledgeStore for
// simulation mode and tests.
type InMemoryKnowledgeStore struct {
	mu       sync.RWMutex
	passages map[PersonalityType][]Passage
}

// NewInMemoryKnowledgeStore creates an empty store.
func NewInMemoryKnowledgeStore() *InMemoryKnowledgeStore {
	return &InMemoryKnowledgeStore{passages: make(map[PersonalityType][]Passage)}
}

// Add inserts a passage.
func (s *InMemoryKnowledgeStore) Add(p Passage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages[p.Type] = append(s.passages[p.Type], p)
}

// Search returns the first topK passages for t in insertion order.
func (s *InMemoryKnowledgeStore) Search(ctx context.Context, t PersonalityType, topK int) ([]Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.passages[t]
	if topK <= 0 || topK > len(stored) {
		topK = len(stored)
	}
	result := make([]Passage, topK)
	copy(result, stored[:topK])
	return result, nil
}

// Ready reports whether any passages have been loaded.
func (s *InMemoryKnowledgeStore) Ready(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages) > 0
}

// SeedFromCatalog loads one passage per type and category derived from the
// static catalog, so simulation mode can exercise the retrieval path
// without an external vector database.
func (s *InMemoryKnowledgeStore) SeedFromCatalog() {
	for _, t := range AllTypes() {
		p := Profile(t)
		s.Add(Passage{
			Content:  p.Nickname + ": " + p.Description,
			Type:     t,
			Category: "communication_style",
		})
		s.Add(Passage{
			Content:  "Cognitive function stack: " + p.CognitiveFunctions,
			Type:     t,
			Category: "cognitive_functions",
		})
		s.Add(Passage{
			Content:  string(t) + " personalities are " + p.TraitSummary + ".",
			Type:     t,
			Category: "values_and_motivations",
		})
	}
}
