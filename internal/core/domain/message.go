package domain

import "time"

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session represents a chat session. Summary is a rolling summary of
// trimmed history, overwritten (never appended) on each summarization pass.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one entry in a session's message log. IsTrimmed marks messages
// excluded from the active context window; they remain in storage and can be
// restored. Only the memory manager mutates IsTrimmed.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	IsTrimmed bool      `json:"is_trimmed"`
}

// KnowledgeEntry is a durable fact captured during summarization.
// Entries are append-only and never mutated.
type KnowledgeEntry struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Key             string    `json:"key"`
	Value           string    `json:"value"`
	SourceMessageID string    `json:"source_message_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// File represents an uploaded file whose chunks live in the vector index.
// SoftDeleted files stay indexed but are excluded from retrieval results.
type File struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"` // empty for global files
	Name        string    `json:"name"`
	SizeBytes   int64     `json:"size_bytes"`
	SoftDeleted bool      `json:"soft_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}
