package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ragvault/ragvault/internal/apperr"
	"github.com/ragvault/ragvault/internal/chunker"
	"github.com/ragvault/ragvault/internal/entities"
	"github.com/ragvault/ragvault/internal/ingest"
	"github.com/ragvault/ragvault/internal/metastore"
	"github.com/ragvault/ragvault/internal/provider"
	"github.com/ragvault/ragvault/internal/retrieval"
	"github.com/ragvault/ragvault/internal/vectorstore"
)

// --- fakes shared across handler tests ---

type fakeVaultMeta struct {
	vaults map[string]metastore.Vault
}

func newFakeVaultMeta() *fakeVaultMeta { return &fakeVaultMeta{vaults: map[string]metastore.Vault{}} }

func (f *fakeVaultMeta) CreateVault(ctx context.Context, name, description string) (metastore.Vault, error) {
	v := metastore.Vault{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: time.Unix(0, 0)}
	f.vaults[v.ID] = v
	return v, nil
}

func (f *fakeVaultMeta) GetVault(ctx context.Context, id string) (metastore.Vault, error) {
	v, ok := f.vaults[id]
	if !ok {
		return metastore.Vault{}, notFoundErr("vault")
	}
	return v, nil
}

func (f *fakeVaultMeta) ListVaults(ctx context.Context) ([]metastore.Vault, error) {
	var out []metastore.Vault
	for _, v := range f.vaults {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVaultMeta) DeleteVaultCascade(ctx context.Context, id string) error {
	delete(f.vaults, id)
	return nil
}

type fakeVaultVectors struct{ deleted []string }

func (f *fakeVaultVectors) DeleteByVault(ctx context.Context, vaultID string) error {
	f.deleted = append(f.deleted, vaultID)
	return nil
}

type fakeDocMeta struct {
	docs map[string]metastore.Document
}

func (f *fakeDocMeta) GetDocument(ctx context.Context, id string, chunkCount func(context.Context, string) (int, error)) (metastore.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return metastore.Document{}, notFoundErr("document")
	}
	return d, nil
}

func (f *fakeDocMeta) ListDocuments(ctx context.Context, vaultID *string, limit, offset int) ([]metastore.Document, int, error) {
	var out []metastore.Document
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (f *fakeDocMeta) DeleteDocument(ctx context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

type fakeDocVectors struct{}

func (fakeDocVectors) DeleteByDocument(ctx context.Context, documentID string) error { return nil }
func (fakeDocVectors) CountByDocument(ctx context.Context, documentID string) (int, error) {
	return 0, nil
}

type fakeAgentMeta struct {
	vaults map[string]bool
	agents map[string]metastore.Agent
}

func (f *fakeAgentMeta) VaultExists(ctx context.Context, id string) (bool, error) {
	return f.vaults[id], nil
}

func (f *fakeAgentMeta) CreateAgent(ctx context.Context, name, vaultID, systemPrompt string) (metastore.Agent, error) {
	a := metastore.Agent{ID: uuid.NewString(), Name: name, VaultID: vaultID, SystemPrompt: systemPrompt}
	f.agents[a.ID] = a
	return a, nil
}

func (f *fakeAgentMeta) GetAgent(ctx context.Context, id string) (metastore.Agent, error) {
	a, ok := f.agents[id]
	if !ok {
		return metastore.Agent{}, notFoundErr("agent")
	}
	return a, nil
}

func (f *fakeAgentMeta) ListAgents(ctx context.Context, vaultID *string) ([]metastore.Agent, error) {
	var out []metastore.Agent
	for _, a := range f.agents {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAgentMeta) DeleteAgent(ctx context.Context, id string) error {
	delete(f.agents, id)
	return nil
}

type fakeIngestMeta struct {
	vaults map[string]bool
}

func (f *fakeIngestMeta) VaultExists(ctx context.Context, id string) (bool, error) {
	return f.vaults[id], nil
}

func (f *fakeIngestMeta) CreateDocument(ctx context.Context, vaultID *string, title, source string, metadata map[string]any) (metastore.Document, error) {
	return metastore.Document{ID: uuid.NewString(), VaultID: vaultID, Title: title, Source: source, Metadata: metadata}, nil
}

func (f *fakeIngestMeta) DeleteDocument(ctx context.Context, id string) error { return nil }

type fakeIngestVectors struct{}

func (fakeIngestVectors) UpsertChunks(ctx context.Context, documentID string, vaultID *string, denorm vectorstore.DenormMetadata, chunks []vectorstore.ChunkInput) error {
	return nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, batch []string) ([][]float32, error) {
	vectors := make([][]float32, len(batch))
	for i := range batch {
		vectors[i] = []float32{1, 2, 3}
	}
	return vectors, nil
}

type fakeChatMeta struct {
	sessions map[string]metastore.Session
	messages map[string][]metastore.Message
}

func (f *fakeChatMeta) GetOrCreateSession(ctx context.Context, id string, userID *string) (metastore.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	s := metastore.Session{ID: id}
	f.sessions[id] = s
	return s, nil
}

func (f *fakeChatMeta) RecentMessages(ctx context.Context, sessionID string, limit int) ([]metastore.Message, error) {
	return f.messages[sessionID], nil
}

func (f *fakeChatMeta) AppendMessage(ctx context.Context, sessionID string, role metastore.Role, content string) (metastore.Message, error) {
	m := metastore.Message{ID: uuid.NewString(), SessionID: sessionID, Role: role, Content: content}
	f.messages[sessionID] = append(f.messages[sessionID], m)
	return m, nil
}

func (f *fakeChatMeta) UpdateLastActive(ctx context.Context, id string) error { return nil }

type fakeSearcher struct{}

func (fakeSearcher) Search(ctx context.Context, queryVector []float32, topK int, filter vectorstore.SearchFilter) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func notFoundErr(resource string) error {
	return apperr.NotFound("%s not found", resource)
}

// --- test harness ---

func newTestServer() *Server {
	vaultMeta := newFakeVaultMeta()
	vaultVectors := &fakeVaultVectors{}
	vaults := entities.NewVaults(vaultMeta, vaultVectors)

	docMeta := &fakeDocMeta{docs: map[string]metastore.Document{}}
	documents := entities.NewDocuments(docMeta, fakeDocVectors{})

	agentMeta := &fakeAgentMeta{vaults: map[string]bool{}, agents: map[string]metastore.Agent{}}
	agents := entities.NewAgents(agentMeta)

	ingestMeta := &fakeIngestMeta{vaults: map[string]bool{}}
	pipeline := ingest.New(ingestMeta, fakeIngestVectors{}, fakeEmbedder{}, chunker.DefaultOptions(), nil)

	chatMeta := &fakeChatMeta{sessions: map[string]metastore.Session{}, messages: map[string][]metastore.Message{}}
	core := retrieval.New(chatMeta, fakeSearcher{}, fakeEmbedder{}, fakeRetrievalChat{}, 5, 0.3, 10)

	return New(Deps{
		Vaults:         vaults,
		Documents:      documents,
		Agents:         agents,
		Ingest:         pipeline,
		Retrieval:      core,
		CORSOrigins:    []string{"*"},
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1 << 20,
	})
}

type fakeRetrievalChat struct{}

func (fakeRetrievalChat) Complete(ctx context.Context, messages []provider.ChatMessage, temperature float32) (string, error) {
	return "an answer", nil
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestCreateAndGetVault(t *testing.T) {
	s := newTestServer()

	createReq := httptest.NewRequest(http.MethodPost, "/vaults", bytes.NewBufferString(`{"name":"docs","description":"d"}`))
	createRec := httptest.NewRecorder()
	s.ServeHTTP(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	var created vaultResponse
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/vaults/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	s.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)
}

func TestGetVaultNotFound(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/vaults/missing", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateVaultMissingNameIsValidationError(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/vaults", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateAgentUnknownVaultIsNotFound(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/agents", bytes.NewBufferString(`{"name":"a","vault_id":"missing","system_prompt":"p"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestMissingTextIsValidationError(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString(`{"text":""}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChatMissingSessionIDIsValidationError(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChatHappyPath(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"session_id":"s1","message":"hi"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "s1", resp.SessionID)
	require.Equal(t, "an answer", resp.Answer)
}
