package mbtichat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Retrieval-augmented provider
// ──────────────────────────────────────────────
//
// Fetches reference passages about the persona from the knowledge store,
// then asks the completion backend to answer using them. Fails UNAVAILABLE
// when the store is absent; credential failures of the completion backend
// propagate as that backend reports them.

const (
	defaultTopK = 3
	minTopK     = 3
	maxTopK     = 7
)

// RetrievalProvider augments completion with knowledge-store passages.
type RetrievalProvider struct {
	store     KnowledgeStore
	completer Provider
	topK      int
}

// NewRetrievalProvider creates the adapter. topK outside [3,7] is clamped;
// zero means the default of 3.
func NewRetrievalProvider(store KnowledgeStore, completer Provider, topK int) *RetrievalProvider {
	if topK == 0 {
		topK = defaultTopK
	}
	if topK < minTopK {
		topK = minTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	return &RetrievalProvider{store: store, completer: completer, topK: topK}
}

func (p *RetrievalProvider) Name() string { return ProviderRetrieval }

// Available requires both a ready store and an available completer.
func (p *RetrievalProvider) Available() bool {
	return p.store != nil && p.completer != nil && p.completer.Available()
}

// Generate retrieves passages for req.Persona and delegates completion.
func (p *RetrievalProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if p.store == nil {
		return "", newProviderError(ProviderRetrieval, ErrUnavailable, errors.New("no knowledge store configured"))
	}
	if p.completer == nil {
		return "", newProviderError(ProviderRetrieval, ErrAuthMissing, errors.New("no completion backend configured"))
	}
	if !p.store.Ready(ctx) {
		return "", newProviderError(ProviderRetrieval, ErrUnavailable, errors.New("knowledge store not initialized"))
	}

	passages, err := p.store.Search(ctx, req.Persona, p.topK)
	if err != nil {
		return "", newProviderError(ProviderRetrieval, ErrUnavailable, fmt.Errorf("knowledge search: %w", err))
	}
	if len(passages) == 0 {
		return "", newProviderError(ProviderRetrieval, ErrUnavailable, fmt.Errorf("no passages indexed for %s", req.Persona))
	}

	augmented := req
	augmented.Prompt = buildAugmentedPrompt(req.Persona, req.Prompt, passages)

	text, err := p.completer.Generate(ctx, augmented)
	if err != nil {
		if pe, ok := AsProviderError(err); ok {
			return "", newProviderError(ProviderRetrieval, pe.Kind, pe)
		}
		return "", newProviderError(ProviderRetrieval, ErrUnknown, err)
	}
	return text, nil
}

// HealthCheck requires the store to be ready; the completer is probed
// separately by the orchestrator.
func (p *RetrievalProvider) HealthCheck(ctx context.Context) bool {
	return p.store != nil && p.store.Ready(ctx)
}

// buildAugmentedPrompt combines retrieved passages with the personalized
// question.
func buildAugmentedPrompt(t PersonalityType, query string, passages []Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference notes about the %s personality:\n", t)
	for _, passage := range passages {
		fmt.Fprintf(&b, "- %s\n", passage.Content)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\n", query)
	fmt.Fprintf(&b, "How would an %s personality type respond to this? ", t)
	b.WriteString("Consider their cognitive functions, core values, and communication style. ")
	b.WriteString("Make your response sound like a casual friend, not an analysis.")
	return b.String()
}
