package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driving"
)

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.index != nil {
		if err := s.index.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "vector index unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Chat endpoint

// handleChat runs one chat turn and streams the reply as server-sent
// events. Tokens arrive as `data:` lines; debug payloads ride as SSE
// comments so ordinary SSE clients skip them.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req driving.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events, err := s.chatService.StreamTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid request body")
		default:
			writeError(w, http.StatusInternalServerError, "chat turn failed")
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for event := range events {
		switch event.Type {
		case driving.EventToken:
			fmt.Fprintf(w, "data: %s\n\n", event.Token)
		case driving.EventRAGDebug:
			writeSSEComment(w, "RAG_DEBUG", event.RAG)
		case driving.EventSearchDebug:
			writeSSEComment(w, "SEARCH_DEBUG", event.Search)
		case driving.EventMemoryDebug:
			writeSSEComment(w, "MEMORY_DEBUG", event.Memory)
		}
		flusher.Flush()
	}
}

// writeSSEComment emits a debug payload as an SSE comment line
func writeSSEComment(w http.ResponseWriter, label string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, ": %s %s\n\n", label, data)
}

// Session endpoints

type createSessionRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil {
		// Body is optional; a bare POST creates an unnamed session
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

type sessionDetailResponse struct {
	Session  *domain.Session   `json:"session"`
	Messages []*domain.Message `json:"messages"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	messages, err := s.messages.ListBySession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []*domain.Message{}
	}

	writeJSON(w, http.StatusOK, sessionDetailResponse{
		Session:  session,
		Messages: messages,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	// Messages go first so a crash never leaves orphans pointing at a
	// deleted session
	if err := s.messages.DeleteBySession(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete messages")
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Conversation memory endpoints

type knowledgeEntryResponse struct {
	ID              string `json:"id"`
	Key             string `json:"key"`
	Value           string `json:"value"`
	SourceMessageID string `json:"source_message_id,omitempty"`
}

type contextSummaryResponse struct {
	SessionID string                   `json:"session_id"`
	Summary   string                   `json:"summary"`
	Knowledge []knowledgeEntryResponse `json:"knowledge"`
}

func (s *Server) handleContextSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	summary, err := s.memoryService.Summary(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	entries, err := s.memoryService.Knowledge(r.Context(), sessionID, 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load knowledge")
		return
	}

	knowledge := make([]knowledgeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		knowledge = append(knowledge, knowledgeEntryResponse{
			ID:              entry.ID,
			Key:             entry.Key,
			Value:           entry.Value,
			SourceMessageID: entry.SourceMessageID,
		})
	}

	writeJSON(w, http.StatusOK, contextSummaryResponse{
		SessionID: sessionID,
		Summary:   summary,
		Knowledge: knowledge,
	})
}

type restoreRequest struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}

func (s *Server) handleContextRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	restored, err := s.memoryService.Restore(r.Context(), req.SessionID, req.Count)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to restore messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"restored": restored})
}

// Search settings endpoints

// searchSettingsPayload is the wire form of ChatSettings. Durations travel
// as integer seconds; fields are pointers on input so a partial update
// leaves unmentioned settings untouched.
type searchSettingsPayload struct {
	AllowInternetSearch   *bool    `json:"allow_internet_search,omitempty"`
	DebugLogging          *bool    `json:"debug_logging,omitempty"`
	SearchRateLimitPerMin *int     `json:"search_rate_limit_per_min,omitempty"`
	SearchCacheTTLSecs    *int     `json:"search_cache_ttl_seconds,omitempty"`
	TopK                  *int     `json:"top_k,omitempty"`
	TokenBudget           *int     `json:"token_budget,omitempty"`
	SimilarityThreshold   *float64 `json:"similarity_threshold,omitempty"`
	CacheTTLSecs          *int     `json:"cache_ttl_seconds,omitempty"`
	QueryTimeoutMillis    *int     `json:"query_timeout_ms,omitempty"`
	ApproxTokensPerChunk  *int     `json:"approx_tokens_per_chunk,omitempty"`
	TrimThreshold         *int     `json:"trim_threshold,omitempty"`
	KeepLastN             *int     `json:"keep_last_n,omitempty"`
	SummaryMaxTokens      *int     `json:"summary_max_tokens,omitempty"`
}

type searchSettingsResponse struct {
	AllowInternetSearch   bool    `json:"allow_internet_search"`
	DebugLogging          bool    `json:"debug_logging"`
	SearchRateLimitPerMin int     `json:"search_rate_limit_per_min"`
	SearchCacheTTLSecs    int     `json:"search_cache_ttl_seconds"`
	TopK                  int     `json:"top_k"`
	TokenBudget           int     `json:"token_budget"`
	SimilarityThreshold   float64 `json:"similarity_threshold"`
	CacheTTLSecs          int     `json:"cache_ttl_seconds"`
	QueryTimeoutMillis    int     `json:"query_timeout_ms"`
	ApproxTokensPerChunk  int     `json:"approx_tokens_per_chunk"`
	TrimThreshold         int     `json:"trim_threshold"`
	KeepLastN             int     `json:"keep_last_n"`
	SummaryMaxTokens      int     `json:"summary_max_tokens"`
}

func settingsToResponse(settings *domain.ChatSettings) searchSettingsResponse {
	return searchSettingsResponse{
		AllowInternetSearch:   settings.AllowWebSearch,
		DebugLogging:          settings.DebugLogging,
		SearchRateLimitPerMin: settings.SearchRateLimitPerMin,
		SearchCacheTTLSecs:    int(settings.SearchCacheTTL.Seconds()),
		TopK:                  settings.TopK,
		TokenBudget:           settings.TokenBudget,
		SimilarityThreshold:   settings.SimilarityThreshold,
		CacheTTLSecs:          int(settings.CacheTTL.Seconds()),
		QueryTimeoutMillis:    int(settings.QueryTimeout.Milliseconds()),
		ApproxTokensPerChunk:  settings.ApproxTokensPerChunk,
		TrimThreshold:         settings.TrimThreshold,
		KeepLastN:             settings.KeepLastN,
		SummaryMaxTokens:      settings.SummaryMaxTokens,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.GetChatSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsToResponse(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload searchSettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := s.settings.GetChatSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	if payload.AllowInternetSearch != nil {
		settings.AllowWebSearch = *payload.AllowInternetSearch
	}
	if payload.DebugLogging != nil {
		settings.DebugLogging = *payload.DebugLogging
	}
	if payload.SearchRateLimitPerMin != nil {
		settings.SearchRateLimitPerMin = *payload.SearchRateLimitPerMin
	}
	if payload.SearchCacheTTLSecs != nil {
		settings.SearchCacheTTL = time.Duration(*payload.SearchCacheTTLSecs) * time.Second
	}
	if payload.TopK != nil {
		settings.TopK = *payload.TopK
	}
	if payload.TokenBudget != nil {
		settings.TokenBudget = *payload.TokenBudget
	}
	if payload.SimilarityThreshold != nil {
		settings.SimilarityThreshold = *payload.SimilarityThreshold
	}
	if payload.CacheTTLSecs != nil {
		settings.CacheTTL = time.Duration(*payload.CacheTTLSecs) * time.Second
	}
	if payload.QueryTimeoutMillis != nil {
		settings.QueryTimeout = time.Duration(*payload.QueryTimeoutMillis) * time.Millisecond
	}
	if payload.ApproxTokensPerChunk != nil {
		settings.ApproxTokensPerChunk = *payload.ApproxTokensPerChunk
	}
	if payload.TrimThreshold != nil {
		settings.TrimThreshold = *payload.TrimThreshold
	}
	if payload.KeepLastN != nil {
		settings.KeepLastN = *payload.KeepLastN
	}
	if payload.SummaryMaxTokens != nil {
		settings.SummaryMaxTokens = *payload.SummaryMaxTokens
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.settings.SaveChatSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsToResponse(settings))
}

// File endpoints

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	files, err := s.files.List(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}
	if files == nil {
		files = []*domain.File{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.files.Get(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load file")
		return
	}

	if err := s.files.SoftDelete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
