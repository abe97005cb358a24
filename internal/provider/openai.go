package provider

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/ragvault/ragvault/internal/apperr"
)

// embedBatchSize bounds how many inputs go into a single provider
// request; larger batches are internally split and embedded in
// parallel, respecting maxConcurrency (§4.1).
const embedBatchSize = 96

// OpenAIAdapter wraps an OpenAI-compatible HTTP endpoint (configurable
// base URL, arbitrary model identifiers) and implements both Embedder
// and ChatCompleter.
type OpenAIAdapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	embeddingDim   int
	chatModel      string
	limiter        *concurrencyLimiter
}

// NewOpenAIAdapter constructs an adapter. baseURL may be empty to use the
// provider's default endpoint, or set to target a self-hosted
// OpenAI-compatible server.
func NewOpenAIAdapter(apiKey, baseURL, embeddingModel string, embeddingDim int, chatModel string, maxConcurrency int) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIAdapter{
		client:         openai.NewClientWithConfig(cfg),
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		embeddingDim:   embeddingDim,
		chatModel:      chatModel,
		limiter:        newConcurrencyLimiter(maxConcurrency),
	}
}

// Embed implements Embedder. It preserves input order even when a batch
// is internally split across multiple provider calls.
func (a *OpenAIAdapter) Embed(ctx context.Context, batch []string) ([][]float32, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(batch))
	group, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(batch); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(batch) {
			end = len(batch)
		}
		start, end := start, end

		group.Go(func() error {
			if err := a.limiter.acquire(gctx); err != nil {
				return apperr.ProviderTransient(err, "acquire provider concurrency slot")
			}
			defer a.limiter.release()

			vectors, err := withRetry(gctx, func(callCtx context.Context) ([][]float32, error) {
				return a.embedOnce(callCtx, batch[start:end])
			})
			if err != nil {
				return err
			}

			copy(results[start:end], vectors)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (a *OpenAIAdapter) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, apperr.ProviderPermanent(nil, "provider returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if a.embeddingDim > 0 && len(d.Embedding) != a.embeddingDim {
			return nil, apperr.ProviderPermanent(nil, "embedding dimension mismatch: expected %d, got %d", a.embeddingDim, len(d.Embedding))
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}

// Complete implements ChatCompleter.
func (a *OpenAIAdapter) Complete(ctx context.Context, messages []ChatMessage, temperature float32) (string, error) {
	if err := a.limiter.acquire(ctx); err != nil {
		return "", apperr.ProviderTransient(err, "acquire provider concurrency slot")
	}
	defer a.limiter.release()

	reply, err := withRetry(ctx, func(callCtx context.Context) (string, error) {
		return a.completeOnce(callCtx, messages, temperature)
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (a *OpenAIAdapter) completeOnce(ctx context.Context, messages []ChatMessage, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.chatModel,
		Temperature: temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.ProviderPermanent(nil, "provider returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
