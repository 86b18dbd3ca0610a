package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/ports/driving"
)

// mockReplyTokens is the canned assistant reply, streamed one token at a
// time. Real model inference is out of scope for this service; the stream
// shape is what downstream consumers depend on.
var mockReplyTokens = []string{"Hello", "from", "mock", "AI!"}

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// chatService orchestrates a chat turn end to end: persist the incoming
// messages, run memory management, assemble retrieval context, augment with
// web search, then stream the reply with debug events first.
type chatService struct {
	sessions  driven.SessionStore
	messages  driven.MessageStore
	settings  driven.SettingsStore
	retrieval driving.ContextService
	memory    driving.MemoryService
	search    *SearchAugmenter
	logger    *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	sessions driven.SessionStore,
	messages driven.MessageStore,
	settings driven.SettingsStore,
	retrieval driving.ContextService,
	memory driving.MemoryService,
	search *SearchAugmenter,
	logger *slog.Logger,
) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		sessions:  sessions,
		messages:  messages,
		settings:  settings,
		retrieval: retrieval,
		memory:    memory,
		search:    search,
		logger:    logger,
	}
}

// StreamTurn runs one chat turn. Session lookup and input validation are
// the only hard failures; retrieval, memory, and search all degrade.
func (s *chatService) StreamTurn(ctx context.Context, req driving.ChatRequest) (<-chan driving.ChatEvent, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("%w: at least one message is required", domain.ErrInvalidInput)
	}

	if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetChatSettings(ctx)
	if err != nil {
		settings = domain.DefaultChatSettings()
	}

	now := time.Now()
	incoming := make([]*domain.Message, 0, len(req.Messages))
	for i, in := range req.Messages {
		incoming = append(incoming, &domain.Message{
			ID:        uuid.NewString(),
			SessionID: req.SessionID,
			Role:      in.Role,
			Content:   in.Content,
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	if err := s.messages.Append(ctx, incoming); err != nil {
		s.logger.Warn("message persist failed", "session_id", req.SessionID, "error", err)
	}

	query := lastUserContent(req.Messages)

	// Memory management runs before retrieval so the summary reflects the
	// turn that just arrived
	if _, err := s.memory.TrimAndSummarize(ctx, req.SessionID); err != nil {
		s.logger.Warn("trim and summarize failed", "session_id", req.SessionID, "error", err)
	}
	memDebug := s.memoryDebug(ctx, req.SessionID, settings)

	ragCtx := s.retrieval.RetrieveContext(ctx, req.SessionID, query, req.Sources)

	var searchDebug *driving.SearchDebug
	if s.search != nil && s.search.ShouldSearch(ctx, query) {
		results := s.search.Search(ctx, query)
		searchDebug = &driving.SearchDebug{Query: query, Results: results}
	}

	reply := strings.Join(mockReplyTokens, " ")
	assistant := &domain.Message{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Append(ctx, []*domain.Message{assistant}); err != nil {
		s.logger.Warn("assistant message persist failed", "session_id", req.SessionID, "error", err)
	}

	events := make(chan driving.ChatEvent)
	go func() {
		defer close(events)

		// Debug events precede all token events
		if settings.DebugLogging {
			if !emit(ctx, events, driving.ChatEvent{Type: driving.EventRAGDebug, RAG: ragCtx}) {
				return
			}
			if searchDebug != nil {
				if !emit(ctx, events, driving.ChatEvent{Type: driving.EventSearchDebug, Search: searchDebug}) {
					return
				}
			}
			if !emit(ctx, events, driving.ChatEvent{Type: driving.EventMemoryDebug, Memory: memDebug}) {
				return
			}
		}

		for _, tok := range mockReplyTokens {
			if !emit(ctx, events, driving.ChatEvent{Type: driving.EventToken, Token: tok}) {
				return
			}
		}
	}()

	return events, nil
}

// memoryDebug assembles the memory debug payload for a turn. Store failures
// degrade to an empty payload.
func (s *chatService) memoryDebug(ctx context.Context, sessionID string, settings *domain.ChatSettings) *driving.MemoryDebug {
	summary, err := s.memory.Summary(ctx, sessionID)
	if err != nil {
		summary = ""
	}

	var keys []string
	entries, err := s.memory.Knowledge(ctx, sessionID, 10)
	if err == nil {
		for _, e := range entries {
			keys = append(keys, e.Key)
		}
	}

	return &driving.MemoryDebug{
		SummaryIncluded: summary != "",
		Knowledge:       keys,
		BudgetOK:        domain.EstimateTokens(summary) <= settings.TokenBudget,
	}
}

// lastUserContent returns the content of the last user message, falling
// back to the last message of any role
func lastUserContent(msgs []driving.IncomingMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleUser {
			return msgs[i].Content
		}
	}
	return msgs[len(msgs)-1].Content
}

// emit sends one event unless the consumer went away
func emit(ctx context.Context, ch chan<- driving.ChatEvent, ev driving.ChatEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
