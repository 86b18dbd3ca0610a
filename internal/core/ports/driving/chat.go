package driving

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// ChatEventType discriminates events on a chat turn stream
type ChatEventType string

const (
	// EventToken carries one token of the assistant reply
	EventToken ChatEventType = "token"

	// EventRAGDebug carries the retrieval debug payload (out-of-band)
	EventRAGDebug ChatEventType = "rag_debug"

	// EventSearchDebug carries the web search debug payload (out-of-band)
	EventSearchDebug ChatEventType = "search_debug"

	// EventMemoryDebug carries the memory manager debug payload (out-of-band)
	EventMemoryDebug ChatEventType = "memory_debug"
)

// ChatEvent is one event emitted during a chat turn. Debug events precede
// all token events on the stream.
type ChatEvent struct {
	Type    ChatEventType
	Token   string
	RAG     *domain.RetrievedContext
	Search  *SearchDebug
	Memory  *MemoryDebug
}

// SearchDebug reports the web search augmentation outcome
type SearchDebug struct {
	Query   string                   `json:"query"`
	Results []domain.WebSearchResult `json:"results"`
}

// MemoryDebug reports the memory manager outcome for a turn
type MemoryDebug struct {
	SummaryIncluded bool     `json:"summary_included"`
	Knowledge       []string `json:"knowledge"`
	BudgetOK        bool     `json:"budget_ok"`
}

// IncomingMessage is one message submitted with a chat turn
type IncomingMessage struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is the input to a chat turn
type ChatRequest struct {
	SessionID string            `json:"session_id"`
	Messages  []IncomingMessage `json:"messages"`
	Sources   []domain.SourceType `json:"sources,omitempty"`
}

// ChatService orchestrates a chat turn: persistence, retrieval, web search
// augmentation, memory management, and the reply token stream.
type ChatService interface {
	// StreamTurn runs one chat turn and returns the event stream. The
	// channel is closed when the turn completes. The only hard failure is
	// domain.ErrSessionNotFound (or invalid input); every other error path
	// degrades and the turn still produces a reply stream.
	StreamTurn(ctx context.Context, req ChatRequest) (<-chan ChatEvent, error)
}
