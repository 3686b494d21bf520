package mbtichat

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ──────────────────────────────────────────────
// OpenAI direct-completion provider
// ──────────────────────────────────────────────

const (
	defaultOpenAIModel     = "gpt-3.5-turbo"
	defaultOpenAIMaxTokens = 300
)

// OpenAIProviderConfig configures the OpenAI adapter. The key is injected
// explicitly; the adapter never reads ambient environment state itself.
type OpenAIProviderConfig struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible endpoints
	Model   string // default gpt-3.5-turbo
}

// OpenAIProvider sends the persona system prompt plus the user query to a
// hosted chat-completion model. SDK-level retries are disabled; the shared
// retryPolicy owns backoff so rate-limit handling is uniform across
// adapters.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	retry  retryPolicy
	avail  availability
}

// NewOpenAIProvider creates the adapter. With no API key the provider is
// constructed dead: every Generate short-circuits with AUTH_MISSING and no
// network attempt is made.
func NewOpenAIProvider(cfg OpenAIProviderConfig) *OpenAIProvider {
	p := &OpenAIProvider{
		model: cfg.Model,
		retry: defaultRetryPolicy(),
	}
	if p.model == "" {
		p.model = defaultOpenAIModel
	}
	if cfg.APIKey == "" {
		return p
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	p.client = &client
	p.avail.markAlive()
	return p
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

// Available reports the cached availability.
func (p *OpenAIProvider) Available() bool { return p.client != nil && p.avail.ok() }

// Generate runs one completion under the retry policy.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if p.client == nil {
		return "", newProviderError(ProviderOpenAI, ErrAuthMissing, errors.New("no OpenAI API key configured"))
	}
	if !p.avail.ok() {
		return "", newProviderError(ProviderOpenAI, ErrUnavailable, errors.New("openai marked unavailable, re-check required"))
	}

	model := p.model
	if req.ModelHint != "" {
		model = req.ModelHint
	}

	text, err := p.retry.run(ctx, ProviderOpenAI, func() (string, error) {
		return p.complete(ctx, model, req.SystemPrompt, req.Prompt, defaultOpenAIMaxTokens)
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
func (p *OpenAIProvider) cacheFailure(err error) {
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
func (p *OpenAIProvider) HealthCheck(ctx context.Context) bool {
	if p.client == nil {
		return false
	}
	_, err := p.complete(ctx, p.model, "", "test", 5)
	if err != nil {
		p.avail.markDead()
		return false
	}
	p.avail.markAlive()
	return true
}

func (p *OpenAIProvider) complete(ctx context.Context, model, systemPrompt, prompt string, maxTokens int) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) classify(err error) ErrorKind {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if kind := classifyHTTPStatus(apiErr.StatusCode); kind != ErrUnknown {
			return kind
		}
		if isRateLimitMessage(apiErr.Message, nil) {
			return ErrRateLimited
		}
		return ErrUnknown
	}
	return classifyGenericError(err, nil)
}
