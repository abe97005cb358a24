// Package provider defines the outbound capabilities the core needs from
// an external embedding/chat model provider, and wraps an
// OpenAI-compatible HTTP endpoint to satisfy them.
package provider

import "context"

// ChatMessage is a single turn in a chat completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// Embedder turns text into fixed-dimension dense vectors. Order is
// preserved: results[i] is the embedding of batch[i].
type Embedder interface {
	Embed(ctx context.Context, batch []string) ([][]float32, error)
}

// ChatCompleter turns an ordered conversation into a reply.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage, temperature float32) (string, error)
}
