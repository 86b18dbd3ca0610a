package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven/mocks"
	"github.com/parlance-labs/recall-core/internal/core/ports/driving"
)

// stubChatService replays a canned event stream
type stubChatService struct {
	events []driving.ChatEvent
	err    error
	lastRequest driving.ChatRequest
}

func (s *stubChatService) StreamTurn(ctx context.Context, req driving.ChatRequest) (<-chan driving.ChatEvent, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	out := make(chan driving.ChatEvent, len(s.events))
	for _, event := range s.events {
		out <- event
	}
	close(out)
	return out, nil
}

// stubMemoryService returns canned memory state
type stubMemoryService struct {
	summary   string
	knowledge []*domain.KnowledgeEntry
	restored  int
	err       error
}

func (s *stubMemoryService) TrimAndSummarize(ctx context.Context, sessionID string) (string, error) {
	return s.summary, s.err
}

func (s *stubMemoryService) Restore(ctx context.Context, sessionID string, count int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.restored, nil
}

func (s *stubMemoryService) Summary(ctx context.Context, sessionID string) (string, error) {
	return s.summary, s.err
}

func (s *stubMemoryService) Knowledge(ctx context.Context, sessionID string, limit int) ([]*domain.KnowledgeEntry, error) {
	return s.knowledge, nil
}

type serverFixture struct {
	server   *Server
	chat     *stubChatService
	memory   *stubMemoryService
	sessions *mocks.MockSessionStore
	messages *mocks.MockMessageStore
	files    *mocks.MockFileStore
	settings *mocks.MockSettingsStore
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		chat:     &stubChatService{},
		memory:   &stubMemoryService{},
		sessions: mocks.NewMockSessionStore(),
		messages: mocks.NewMockMessageStore(),
		files:    mocks.NewMockFileStore(),
		settings: mocks.NewMockSettingsStore(),
	}
	f.server = NewServer(
		DefaultConfig(),
		f.chat,
		f.memory,
		f.sessions,
		f.messages,
		f.files,
		f.settings,
		nil,
		nil,
	)
	return f
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	f := newServerFixture()
	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleChat_StreamsTokensAndDebug(t *testing.T) {
	f := newServerFixture()
	f.chat.events = []driving.ChatEvent{
		{Type: driving.EventRAGDebug, RAG: domain.EmptyContext()},
		{Type: driving.EventMemoryDebug, Memory: &driving.MemoryDebug{SummaryIncluded: true, Knowledge: []string{"name"}, BudgetOK: true}},
		{Type: driving.EventToken, Token: "Hello"},
		{Type: driving.EventToken, Token: "from"},
		{Type: driving.EventToken, Token: "mock"},
		{Type: driving.EventToken, Token: "AI!"},
	}

	rec := f.do(t, http.MethodPost, "/api/v1/chat",
		`{"session_id":"s-1","messages":[{"role":"user","content":"hi"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	var tokens []string
	debugSeen := false
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			tokens = append(tokens, strings.TrimPrefix(line, "data: "))
		}
		if strings.HasPrefix(line, ": MEMORY_DEBUG ") {
			debugSeen = true
			var payload driving.MemoryDebug
			raw := strings.TrimPrefix(line, ": MEMORY_DEBUG ")
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				t.Fatalf("memory debug not valid JSON: %v", err)
			}
			if !payload.SummaryIncluded || !payload.BudgetOK {
				t.Errorf("memory debug payload = %+v", payload)
			}
		}
	}
	if got := strings.Join(tokens, " "); got != "Hello from mock AI!" {
		t.Errorf("tokens = %q", got)
	}
	if !debugSeen {
		t.Error("no MEMORY_DEBUG comment in stream")
	}
	if !strings.Contains(body, ": RAG_DEBUG ") {
		t.Error("no RAG_DEBUG comment in stream")
	}

	// Debug comments precede tokens
	if strings.Index(body, ": RAG_DEBUG ") > strings.Index(body, "data: Hello") {
		t.Error("debug comment emitted after tokens")
	}
}

func TestHandleChat_SessionNotFound(t *testing.T) {
	f := newServerFixture()
	f.chat.err = domain.ErrSessionNotFound

	rec := f.do(t, http.MethodPost, "/api/v1/chat",
		`{"session_id":"missing","messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleChat_InvalidInput(t *testing.T) {
	f := newServerFixture()
	f.chat.err = domain.ErrInvalidInput

	rec := f.do(t, http.MethodPost, "/api/v1/chat", `{"session_id":"s-1","messages":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleChat_MalformedBody(t *testing.T) {
	f := newServerFixture()
	rec := f.do(t, http.MethodPost, "/api/v1/chat", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/sessions", `{"name":"research"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("create response not valid JSON: %v", err)
	}
	if created.ID == "" || created.Name != "research" {
		t.Errorf("created session = %+v", created)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []domain.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list response not valid JSON: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d sessions, want 1", len(listed))
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var detail sessionDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("detail response not valid JSON: %v", err)
	}
	if detail.Session.ID != created.ID {
		t.Errorf("detail session ID = %q", detail.Session.ID)
	}
	if detail.Messages == nil {
		t.Error("messages should be an empty array, not null")
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/sessions/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteSession_RemovesMessages(t *testing.T) {
	f := newServerFixture()
	ctx := context.Background()

	_ = f.sessions.Create(ctx, &domain.Session{ID: "s-1", CreatedAt: time.Now()})
	_ = f.messages.Append(ctx, []*domain.Message{
		{ID: "m-1", SessionID: "s-1", Role: domain.RoleUser, Content: "hi", CreatedAt: time.Now()},
	})

	rec := f.do(t, http.MethodDelete, "/api/v1/sessions/s-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	count, _ := f.messages.CountBySession(ctx, "s-1")
	if count != 0 {
		t.Errorf("messages remaining after delete = %d", count)
	}
}

func TestHandleContextSummary(t *testing.T) {
	f := newServerFixture()
	f.memory.summary = "user asked about deadlines"
	f.memory.knowledge = []*domain.KnowledgeEntry{
		{ID: "k-1", SessionID: "s-1", Key: "deadline", Value: "friday"},
	}

	rec := f.do(t, http.MethodGet, "/api/v1/context/summary?session_id=s-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp contextSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if resp.Summary != "user asked about deadlines" {
		t.Errorf("summary = %q", resp.Summary)
	}
	if len(resp.Knowledge) != 1 || resp.Knowledge[0].Key != "deadline" {
		t.Errorf("knowledge = %+v", resp.Knowledge)
	}
}

func TestHandleContextSummary_MissingSessionID(t *testing.T) {
	f := newServerFixture()
	rec := f.do(t, http.MethodGet, "/api/v1/context/summary", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleContextSummary_UnknownSession(t *testing.T) {
	f := newServerFixture()
	f.memory.err = domain.ErrSessionNotFound

	rec := f.do(t, http.MethodGet, "/api/v1/context/summary?session_id=missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleContextRestore(t *testing.T) {
	f := newServerFixture()
	f.memory.restored = 5

	rec := f.do(t, http.MethodPost, "/api/v1/context/restore",
		`{"session_id":"s-1","count":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if resp["restored"] != 5 {
		t.Errorf("restored = %d, want 5", resp["restored"])
	}
}

func TestHandleContextRestore_MissingSessionID(t *testing.T) {
	f := newServerFixture()
	rec := f.do(t, http.MethodPost, "/api/v1/context/restore", `{"count":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/settings/search", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got searchSettingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if got.AllowInternetSearch {
		t.Error("web search should default to off")
	}
	if got.TopK != 5 || got.TokenBudget != 1200 {
		t.Errorf("defaults = %+v", got)
	}

	// Partial update only touches the named fields
	rec = f.do(t, http.MethodPost, "/api/v1/settings/search",
		`{"allow_internet_search":true,"top_k":8}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("post status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if !got.AllowInternetSearch || got.TopK != 8 {
		t.Errorf("updated = %+v", got)
	}
	if got.TokenBudget != 1200 {
		t.Errorf("token budget changed on partial update: %d", got.TokenBudget)
	}
}

func TestHandleListFiles(t *testing.T) {
	f := newServerFixture()
	ctx := context.Background()
	_ = f.files.Create(ctx, &domain.File{ID: "f-1", Name: "report.pdf", CreatedAt: time.Now()})
	_ = f.files.Create(ctx, &domain.File{ID: "f-2", SessionID: "other", Name: "scan.pdf", CreatedAt: time.Now()})

	rec := f.do(t, http.MethodGet, "/api/v1/files?session_id=s-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var files []domain.File
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	// Global file visible, other session's file not
	if len(files) != 1 || files[0].ID != "f-1" {
		t.Errorf("files = %+v", files)
	}
}

func TestHandleDeleteFile(t *testing.T) {
	f := newServerFixture()
	ctx := context.Background()
	_ = f.files.Create(ctx, &domain.File{ID: "f-1", Name: "report.pdf", CreatedAt: time.Now()})

	rec := f.do(t, http.MethodDelete, "/api/v1/files/f-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}

	deleted, _ := f.files.SoftDeletedIDs(ctx)
	if _, ok := deleted["f-1"]; !ok {
		t.Error("file was not soft-deleted")
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/files/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
