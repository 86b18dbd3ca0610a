package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/ports/driving"
	"github.com/parlance-labs/recall-core/internal/runtime"
)

// summarizeTimeout bounds the external summarizer call. On expiry the
// heuristic fallback takes over.
const summarizeTimeout = 30 * time.Second

// fallbackSnippetLen is how much of each older message the last-resort
// summary keeps.
const fallbackSnippetLen = 200

// maxFallbackLines caps both the fact-based and snippet-based fallback
// summaries.
const maxFallbackLines = 5

// Ensure memoryService implements MemoryService
var _ driving.MemoryService = (*memoryService)(nil)

// memoryService is the conversation memory manager: it decides when to
// trim, extracts durable facts, invokes the summarizer, persists the rolling
// summary, and marks/unmarks messages trimmed.
type memoryService struct {
	sessions  driven.SessionStore
	messages  driven.MessageStore
	knowledge driven.KnowledgeStore
	settings  driven.SettingsStore
	services  *runtime.Services
	logger    *slog.Logger
}

// NewMemoryService creates a new MemoryService
func NewMemoryService(
	sessions driven.SessionStore,
	messages driven.MessageStore,
	knowledge driven.KnowledgeStore,
	settings driven.SettingsStore,
	services *runtime.Services,
	logger *slog.Logger,
) driving.MemoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &memoryService{
		sessions:  sessions,
		messages:  messages,
		knowledge: knowledge,
		settings:  settings,
		services:  services,
		logger:    logger,
	}
}

// fact is one heuristically extracted key/value pair
type fact struct {
	key             string
	value           string
	sourceMessageID string
}

// TrimAndSummarize trims a session once it grows past the threshold.
// Returns the summary text, or "" when the session is below the threshold.
func (s *memoryService) TrimAndSummarize(ctx context.Context, sessionID string) (string, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return "", err
	}

	settings, err := s.settings.GetChatSettings(ctx)
	if err != nil {
		settings = domain.DefaultChatSettings()
	}

	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(msgs) <= settings.TrimThreshold {
		return "", nil
	}

	keep := settings.KeepLastN
	if keep < 0 {
		keep = 0
	}
	if len(msgs) <= keep {
		return "", nil
	}
	older := msgs[:len(msgs)-keep]

	facts := extractFacts(older)
	if len(facts) > 0 {
		entries := make([]*domain.KnowledgeEntry, 0, len(facts))
		now := time.Now()
		for _, f := range facts {
			entries = append(entries, &domain.KnowledgeEntry{
				ID:              uuid.NewString(),
				SessionID:       sessionID,
				Key:             f.key,
				Value:           f.value,
				SourceMessageID: f.sourceMessageID,
				CreatedAt:       now,
			})
		}
		if err := s.knowledge.Append(ctx, entries); err != nil {
			s.logger.Warn("knowledge capture failed", "session_id", sessionID, "error", err)
		}
	}

	contents := make([]string, 0, len(older))
	for _, m := range older {
		contents = append(contents, m.Content)
	}
	summary := s.summarize(ctx, strings.Join(contents, "\n"), settings.SummaryMaxTokens)
	if summary == "" {
		summary = fallbackSummary(facts, older)
	}

	// Overwrites the previous summary; summaries are rolling, not appended
	if err := s.sessions.SaveSummary(ctx, sessionID, summary); err != nil {
		s.logger.Warn("summary persist failed", "session_id", sessionID, "error", err)
	}

	var trimIDs []string
	for _, m := range older {
		if !m.IsTrimmed {
			trimIDs = append(trimIDs, m.ID)
		}
	}
	if len(trimIDs) > 0 {
		if err := s.messages.MarkTrimmed(ctx, trimIDs); err != nil {
			s.logger.Warn("trim marking failed", "session_id", sessionID, "error", err)
		}
	}

	return summary, nil
}

// Restore un-trims up to count messages, most recent first
func (s *memoryService) Restore(ctx context.Context, sessionID string, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return 0, err
	}

	trimmed, err := s.messages.ListTrimmed(ctx, sessionID, count)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, m := range trimmed {
		if err := s.messages.SetTrimmed(ctx, m.ID, false); err != nil {
			s.logger.Warn("restore failed for message", "message_id", m.ID, "error", err)
			continue
		}
		restored++
	}
	return restored, nil
}

// Summary returns the last stored summary for a session
func (s *memoryService) Summary(ctx context.Context, sessionID string) (string, error) {
	return s.sessions.GetSummary(ctx, sessionID)
}

// Knowledge returns up to limit captured facts, most recent first
func (s *memoryService) Knowledge(ctx context.Context, sessionID string, limit int) ([]*domain.KnowledgeEntry, error) {
	return s.knowledge.ListBySession(ctx, sessionID, limit)
}

// summarize invokes the external summarizer with a hard timeout. Any
// failure or empty output yields "" so the heuristic fallback takes over;
// summarizer errors are never surfaced.
func (s *memoryService) summarize(ctx context.Context, text string, maxTokens int) string {
	summarizer := s.services.SummarizerService()
	if summarizer == nil || strings.TrimSpace(text) == "" {
		return ""
	}

	sctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	out, err := summarizer.Summarize(sctx, text, maxTokens)
	if err != nil {
		s.logger.Debug("summarizer failed, using fallback", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// extractFacts pulls "key: value" pairs out of message contents. Split on
// the first colon; both parts must be non-empty after trimming. Lines
// without a colon are ignored. A heuristic, not NLP.
func extractFacts(older []*domain.Message) []fact {
	var out []fact
	for _, m := range older {
		if m.Content == "" {
			continue
		}
		parts := strings.SplitN(m.Content, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out = append(out, fact{key: key, value: value, sourceMessageID: m.ID})
	}
	return out
}

// fallbackSummary builds a crude summary when the summarizer is unavailable:
// up to five case-insensitively deduplicated "key: value" lines, else the
// first 200 characters of each of the first five older messages.
func fallbackSummary(facts []fact, older []*domain.Message) string {
	var lines []string
	seen := make(map[string]struct{})
	for _, f := range facts {
		lower := strings.ToLower(f.key)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		lines = append(lines, f.key+": "+f.value)
		if len(lines) >= maxFallbackLines {
			break
		}
	}

	if len(lines) == 0 {
		for i, m := range older {
			if i >= maxFallbackLines {
				break
			}
			lines = append(lines, truncateRunes(m.Content, fallbackSnippetLen))
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
