package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ragvault/ragvault/internal/apperr"
	"github.com/ragvault/ragvault/internal/metastore"
	"github.com/ragvault/ragvault/internal/provider"
	"github.com/ragvault/ragvault/internal/vectorstore"
)

type fakeMeta struct {
	mu           sync.Mutex
	sessions     map[string]metastore.Session
	messages     map[string][]metastore.Message
	lastActiveAt map[string]time.Time
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{
		sessions:     map[string]metastore.Session{},
		messages:     map[string][]metastore.Message{},
		lastActiveAt: map[string]time.Time{},
	}
}

func (f *fakeMeta) GetOrCreateSession(ctx context.Context, id string, userID *string) (metastore.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	s := metastore.Session{ID: id, UserID: userID, CreatedAt: time.Now(), LastActiveAt: time.Now()}
	f.sessions[id] = s
	return s, nil
}

func (f *fakeMeta) RecentMessages(ctx context.Context, sessionID string, limit int) ([]metastore.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.messages[sessionID]
	if len(all) <= limit {
		out := make([]metastore.Message, len(all))
		copy(out, all)
		return out, nil
	}
	out := make([]metastore.Message, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}

func (f *fakeMeta) AppendMessage(ctx context.Context, sessionID string, role metastore.Role, content string) (metastore.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := metastore.Message{ID: uuid.NewString(), SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now()}
	f.messages[sessionID] = append(f.messages[sessionID], m)
	return m, nil
}

func (f *fakeMeta) UpdateLastActive(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastActiveAt[id] = time.Now()
	return nil
}

type fakeSearcher struct {
	results []vectorstore.SearchResult
	err     error
	lastFilter vectorstore.SearchFilter
}

func (f *fakeSearcher) Search(ctx context.Context, queryVector []float32, topK int, filter vectorstore.SearchFilter) ([]vectorstore.SearchResult, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.results) {
		return f.results[:topK], nil
	}
	return f.results, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, batch []string) ([][]float32, error) {
	vectors := make([][]float32, len(batch))
	for i := range batch {
		vectors[i] = []float32{1, 2, 3}
	}
	return vectors, nil
}

type fakeChat struct {
	reply string
	err   error
	lastMessages []provider.ChatMessage
}

func (f *fakeChat) Complete(ctx context.Context, messages []provider.ChatMessage, temperature float32) (string, error) {
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestChatReturnsSourcesInScoreOrder(t *testing.T) {
	meta := newFakeMeta()
	searcher := &fakeSearcher{results: []vectorstore.SearchResult{
		{DocumentID: "d1", Title: "Doc 1", Snippet: "alpha", Score: 0.9},
		{DocumentID: "d2", Title: "Doc 2", Snippet: "beta", Score: 0.5},
	}}
	chat := &fakeChat{reply: "Paris is the capital."}

	core := New(meta, searcher, fakeEmbedder{}, chat, 5, 0.3, 10)

	reply, err := core.Chat(context.Background(), "s1", "What is the capital of France?", nil, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "Paris is the capital.", reply.Answer)
	require.Len(t, reply.Sources, 2)
	require.GreaterOrEqual(t, reply.Sources[0].Score, reply.Sources[1].Score)
}

func TestChatPersistsUserMessageBeforeReply(t *testing.T) {
	meta := newFakeMeta()
	chat := &fakeChat{reply: "hi there"}
	core := New(meta, &fakeSearcher{}, fakeEmbedder{}, chat, 5, 0.3, 10)

	_, err := core.Chat(context.Background(), "s1", "hello", nil, nil, Options{})
	require.NoError(t, err)

	msgs := meta.messages["s1"]
	require.Len(t, msgs, 2)
	require.Equal(t, metastore.RoleUser, msgs[0].Role)
	require.Equal(t, metastore.RoleAssistant, msgs[1].Role)
}

func TestChatDurableIntentOnProviderFailure(t *testing.T) {
	meta := newFakeMeta()
	chat := &fakeChat{err: apperr.ProviderUnavailable(errors.New("down"), "chat provider down")}
	core := New(meta, &fakeSearcher{}, fakeEmbedder{}, chat, 5, 0.3, 10)

	_, err := core.Chat(context.Background(), "s1", "hello", nil, nil, Options{})
	require.Error(t, err)

	msgs := meta.messages["s1"]
	require.Len(t, msgs, 1, "user message must remain persisted even when the chat call fails")
	require.Equal(t, metastore.RoleUser, msgs[0].Role)
}

func TestChatHistoryBoundedByMaxHistory(t *testing.T) {
	meta := newFakeMeta()
	for i := 0; i < 20; i++ {
		meta.messages["s1"] = append(meta.messages["s1"], metastore.Message{Role: metastore.RoleUser, Content: "old"})
	}
	chat := &fakeChat{reply: "ok"}
	core := New(meta, &fakeSearcher{}, fakeEmbedder{}, chat, 5, 0.3, 3)

	_, err := core.Chat(context.Background(), "s1", "new message", nil, nil, Options{})
	require.NoError(t, err)

	// system + 3 bounded history + new user message = 5
	require.Len(t, chat.lastMessages, 5)
}

func TestChatEmptySourcesWhenNothingRetrieved(t *testing.T) {
	meta := newFakeMeta()
	chat := &fakeChat{reply: "ok"}
	core := New(meta, &fakeSearcher{}, fakeEmbedder{}, chat, 5, 0.3, 10)

	reply, err := core.Chat(context.Background(), "s1", "hello", nil, nil, Options{})
	require.NoError(t, err)
	require.Empty(t, reply.Sources)
}

func TestChatScopesSearchToVault(t *testing.T) {
	meta := newFakeMeta()
	searcher := &fakeSearcher{}
	chat := &fakeChat{reply: "ok"}
	core := New(meta, searcher, fakeEmbedder{}, chat, 5, 0.3, 10)

	vaultID := "v1"
	_, err := core.Chat(context.Background(), "s1", "hello", nil, &vaultID, Options{})
	require.NoError(t, err)
	require.NotNil(t, searcher.lastFilter.VaultID)
	require.Equal(t, vaultID, *searcher.lastFilter.VaultID)
}
