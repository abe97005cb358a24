// Package retrieval implements the Retrieval + Memory Core: a chat turn
// that loads bounded history, retrieves vault-scoped context, and
// composes a prompt for the chat provider (§4.6).
package retrieval

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ragvault/ragvault/internal/metastore"
	"github.com/ragvault/ragvault/internal/provider"
	"github.com/ragvault/ragvault/internal/vectorstore"
)

const systemInstruction = "You are a helpful assistant. Answer the user's question using the conversation history and, when relevant, the labeled reference documents provided below. If the references don't contain the answer, say so plainly."

// MetadataStore is the slice of the Metadata Store the core needs.
type MetadataStore interface {
	GetOrCreateSession(ctx context.Context, id string, userID *string) (metastore.Session, error)
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]metastore.Message, error)
	AppendMessage(ctx context.Context, sessionID string, role metastore.Role, content string) (metastore.Message, error)
	UpdateLastActive(ctx context.Context, id string) error
}

// VectorSearcher is the slice of the Vector Store the core needs.
type VectorSearcher interface {
	Search(ctx context.Context, queryVector []float32, topK int, filter vectorstore.SearchFilter) ([]vectorstore.SearchResult, error)
}

// Options configures a single chat turn. Zero values fall back to the
// Core's configured defaults.
type Options struct {
	TopK        int
	Temperature float32
}

// Source is a single retrieved chunk surfaced to the caller.
type Source struct {
	DocumentID string
	Title      string
	Snippet    string
	Score      float32
}

// Reply is the outcome of a chat turn.
type Reply struct {
	SessionID string
	Answer    string
	Sources   []Source
}

// Core implements the chat operation of §4.6.
type Core struct {
	meta        MetadataStore
	vectors     VectorSearcher
	embedder    provider.Embedder
	chat        provider.ChatCompleter
	defaultTopK int
	defaultTemp float32
	maxHistory  int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New constructs a Core.
func New(meta MetadataStore, vectors VectorSearcher, embedder provider.Embedder, chat provider.ChatCompleter, defaultTopK int, defaultTemp float32, maxHistory int) *Core {
	return &Core{
		meta:        meta,
		vectors:     vectors,
		embedder:    embedder,
		chat:        chat,
		defaultTopK: defaultTopK,
		defaultTemp: defaultTemp,
		maxHistory:  maxHistory,
		locks:       make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the per-session write lock ensuring two concurrent
// chat turns for the same session don't interleave message inserts or
// last_active_at updates (§5).
func (c *Core) sessionLock(sessionID string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()

	if lock, ok := c.locks[sessionID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	c.locks[sessionID] = lock
	return lock
}

// Chat runs one full turn of the state machine described in §4.6:
// IDLE -> EMBED_QUERY (user msg persisted concurrently) -> RETRIEVE ->
// COMPOSE -> COMPLETE -> PERSIST_REPLY -> IDLE.
func (c *Core) Chat(ctx context.Context, sessionID, message string, userID *string, vaultID *string, opts Options) (Reply, error) {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	topK := opts.TopK
	if topK <= 0 {
		topK = c.defaultTopK
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.defaultTemp
	}

	if _, err := c.meta.GetOrCreateSession(ctx, sessionID, userID); err != nil {
		return Reply{}, err
	}

	history, err := c.meta.RecentMessages(ctx, sessionID, c.maxHistory)
	if err != nil {
		return Reply{}, err
	}

	// The user-message persist and the query embedding may run in
	// parallel; both must complete before retrieval starts (§5).
	group, gctx := errgroup.WithContext(ctx)

	var queryVector []float32
	group.Go(func() error {
		vectors, err := c.embedder.Embed(gctx, []string{message})
		if err != nil {
			return err
		}
		if len(vectors) != 1 {
			return fmt.Errorf("embedder returned %d vectors for 1 input", len(vectors))
		}
		queryVector = vectors[0]
		return nil
	})

	group.Go(func() error {
		_, err := c.meta.AppendMessage(gctx, sessionID, metastore.RoleUser, message)
		return err
	})

	if err := group.Wait(); err != nil {
		return Reply{}, err
	}

	filter := vectorstore.SearchFilter{VaultID: vaultID}
	results, err := c.vectors.Search(ctx, queryVector, topK, filter)
	if err != nil {
		return Reply{}, err
	}

	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{DocumentID: r.DocumentID, Title: r.Title, Snippet: r.Snippet, Score: r.Score}
	}

	prompt := composePrompt(results, history, message)

	answer, err := c.chat.Complete(ctx, prompt, temperature)
	if err != nil {
		return Reply{}, err
	}

	if _, err := c.meta.AppendMessage(ctx, sessionID, metastore.RoleAssistant, answer); err != nil {
		return Reply{}, err
	}
	if err := c.meta.UpdateLastActive(ctx, sessionID); err != nil {
		return Reply{}, err
	}

	return Reply{SessionID: sessionID, Answer: answer, Sources: sources}, nil
}

// composePrompt builds the ordered chat message list: a fixed system
// instruction carrying the retrieved context (in score order), the
// bounded history in ascending time order, then the new user message
// (§4.6 step 6).
func composePrompt(results []vectorstore.SearchResult, history []metastore.Message, message string) []provider.ChatMessage {
	var messages []provider.ChatMessage

	messages = append(messages, provider.ChatMessage{Role: "system", Content: buildSystemContent(results)})

	for _, m := range history {
		messages = append(messages, provider.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	messages = append(messages, provider.ChatMessage{Role: "user", Content: message})

	return messages
}

func buildSystemContent(results []vectorstore.SearchResult) string {
	content := systemInstruction
	if len(results) == 0 {
		return content
	}

	content += "\n\nReference documents:\n"
	for i, r := range results {
		label := r.Title
		if label == "" {
			label = r.DocumentID
		}
		content += fmt.Sprintf("\n[%d] %s (document %s):\n%s\n", i+1, label, r.DocumentID, r.Snippet)
	}
	return content
}
