package mbtichat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Llama direct-completion provider (OpenAI-compatible REST)
// ──────────────────────────────────────────────
//
// The alternate backend for the analytical types. Talks to any
// chat-completions-compatible endpoint; carries its own credential source
// and its own rate-limit signatures, which differ from OpenAI's.

const (
	defaultLlamaModel     = "llama-3-70b-instruct"
	defaultLlamaMaxTokens = 500
)

// llamaRateLimitSignatures are the provider-specific markers seen in this
// backend's unstructured error text, checked on top of the generic set.
var llamaRateLimitSignatures = []string{"too many requests", "quota exceeded"}

// LlamaProviderConfig configures the Llama adapter.
type LlamaProviderConfig struct {
	APIKey  string
	BaseURL string // e.g. "https://api.llama.example.com/v1"
	Model   string // default llama-3-70b-instruct
	Client  *http.Client
}

// LlamaProvider is the hand-rolled OpenAI-compatible chat client.
type LlamaProvider struct {
	apiKey  string
	chatURL string
	model   string
	client  *http.Client
	retry   retryPolicy
	avail   availability
}

// NewLlamaProvider creates the adapter. Missing key or base URL constructs
// it dead, like the OpenAI adapter.
func NewLlamaProvider(cfg LlamaProviderConfig) *LlamaProvider {
	p := &LlamaProvider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: cfg.Client,
		retry:  defaultRetryPolicy(),
	}
	if p.model == "" {
		p.model = defaultLlamaModel
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.APIKey == "" || cfg.BaseURL == "" {
		return p
	}
	p.chatURL = strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	p.avail.markAlive()
	return p
}

func (p *LlamaProvider) Name() string { return ProviderLlama }

// Available reports the cached availability.
func (p *LlamaProvider) Available() bool { return p.chatURL != "" && p.avail.ok() }

// Generate runs one completion under the retry policy.
func (p *LlamaProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if p.chatURL == "" {
		return "", newProviderError(ProviderLlama, ErrAuthMissing, errors.New("no Llama API key or base URL configured"))
	}
	if !p.avail.ok() {
		return "", newProviderError(ProviderLlama, ErrUnavailable, errors.New("llama marked unavailable, re-check required"))
	}

	model := p.model
	if req.ModelHint != "" {
		model = req.ModelHint
	}

	text, err := p.retry.run(ctx, ProviderLlama, func() (string, error) {
		return p.complete(ctx, model, req.SystemPrompt, req.Prompt, defaultLlamaMaxTokens)
	}, p.classify)
	if err != nil {
		p.cacheFailure(err)
		return "", err
	}
	return text, nil
}

// cacheFailure marks the provider dead on credential and connectivity
// failures, so later calls skip the known-dead backend until a re-check.
// Caller cancellation is not cached.
func (p *LlamaProvider) cacheFailure(err error) {
	pe, ok := AsProviderError(err)
	if !ok {
		return
	}
	switch pe.Kind {
	case ErrAuthMissing:
		p.avail.markDead()
	case ErrTransient:
		if !isCallerCancellation(err) {
			p.avail.markDead()
		}
	}
}

// HealthCheck issues a minimal completion and refreshes the cache.
func (p *LlamaProvider) HealthCheck(ctx context.Context) bool {
	if p.chatURL == "" {
		return false
	}
	_, err := p.complete(ctx, p.model, "", "Hello, just testing the connection.", 5)
	if err != nil {
		p.avail.markDead()
		return false
	}
	p.avail.markAlive()
	return true
}

type llamaChatRequest struct {
	Model       string             `json:"model"`
	Messages    []llamaChatMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type llamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llamaChatResponse struct {
	Choices []struct {
		Message llamaChatMessage `json:"message"`
	} `json:"choices"`
}

type llamaErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// llamaAPIError keeps the HTTP status alongside the upstream message for
// classification.
type llamaAPIError struct {
	Status  int
	Message string
}

func (e *llamaAPIError) Error() string {
	return fmt.Sprintf("llama api error (status %d): %s", e.Status, e.Message)
}

func (p *LlamaProvider) complete(ctx context.Context, model, systemPrompt, prompt string, maxTokens int) (string, error) {
	payload := llamaChatRequest{
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}
	if systemPrompt != "" {
		payload.Messages = append(payload.Messages, llamaChatMessage{Role: "system", Content: systemPrompt})
	}
	payload.Messages = append(payload.Messages, llamaChatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.chatURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		apiErr := &llamaAPIError{Status: resp.StatusCode}
		var parsed llamaErrorResponse
		if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
			apiErr.Message = parsed.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return "", apiErr
	}

	var parsed llamaChatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode llama response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llama returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (p *LlamaProvider) classify(err error) ErrorKind {
	var apiErr *llamaAPIError
	if errors.As(err, &apiErr) {
		if kind := classifyHTTPStatus(apiErr.Status); kind != ErrUnknown {
			return kind
		}
		if isRateLimitMessage(apiErr.Message, llamaRateLimitSignatures) {
			return ErrRateLimited
		}
		return ErrUnknown
	}
	return classifyGenericError(err, llamaRateLimitSignatures)
}
