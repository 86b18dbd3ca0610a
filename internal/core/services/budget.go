package services

import (
	"context"
	"fmt"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// selectWithinBudget truncates the ranked pool to fit the token budget.
// The budget is an approximation: tokensPerChunk is a fixed heuristic
// constant, not a tokenizer. At least one chunk always fits.
func selectWithinBudget(ranked []domain.Chunk, tokenBudget, topK, tokensPerChunk int) []domain.Chunk {
	if tokensPerChunk <= 0 {
		tokensPerChunk = domain.DefaultChatSettings().ApproxTokensPerChunk
	}
	maxByBudget := tokenBudget / tokensPerChunk
	if maxByBudget < 1 {
		maxByBudget = 1
	}

	n := len(ranked)
	if maxByBudget < n {
		n = maxByBudget
	}
	if topK < n {
		n = topK
	}
	if n < 0 {
		n = 0
	}
	return ranked[:n]
}

// buildCitations produces "{display_name}#{chunk_index}" labels for the
// selected chunks. Display names are resolved from the file store; an
// unresolved file_id falls back to the raw ID, and a missing file_id to
// "unknown.pdf". Negative chunk indices render as #0.
func buildCitations(ctx context.Context, files driven.FileStore, chunks []domain.Chunk) []string {
	ids := make([]string, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		id := c.Metadata.FileID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	names := map[string]string{}
	if len(ids) > 0 && files != nil {
		if resolved, err := files.DisplayNames(ctx, ids); err == nil {
			names = resolved
		}
	}

	citations := make([]string, 0, len(chunks))
	for _, c := range chunks {
		name := names[c.Metadata.FileID]
		if name == "" {
			name = c.Metadata.FileID
		}
		if name == "" {
			name = "unknown.pdf"
		}
		index := c.Metadata.ChunkIndex
		if index < 0 {
			index = 0
		}
		citations = append(citations, fmt.Sprintf("%s#%d", name, index))
	}
	return citations
}
