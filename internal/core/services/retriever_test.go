package services

import (
	"context"
	"testing"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven/mocks"
	"github.com/parlance-labs/recall-core/internal/runtime"
)

func newTestRetriever() (*mocks.MockVectorIndex, *runtime.Services, *DualScopeRetriever) {
	index := mocks.NewMockVectorIndex()
	services := runtime.NewServices(domain.NewRuntimeConfig("sqlite"))
	services.SetEmbeddingService(mocks.NewMockEmbeddingService())
	return index, services, NewDualScopeRetriever(index, services, nil)
}

func indexHit(id, sessionID string, distance float64) driven.IndexHit {
	d := distance
	return driven.IndexHit{
		ID:       id,
		Text:     "text " + id,
		Metadata: domain.ChunkMetadata{FileID: "f-" + id, SessionID: sessionID, SourceType: domain.SourcePDF},
		Distance: &d,
	}
}

func TestDualScopeRetriever_SessionFillsTopK(t *testing.T) {
	index, _, retriever := newTestRetriever()
	index.AddHit(indexHit("s1", "session-1", 0.1))
	index.AddHit(indexHit("s2", "session-1", 0.2))
	index.AddHit(indexHit("g1", domain.GlobalScope, 0.05))

	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 2, 2*time.Second)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for _, c := range chunks {
		if c.Metadata.SessionID != "session-1" {
			t.Errorf("chunk %s has scope %q, want session-1", c.ID, c.Metadata.SessionID)
		}
	}
	// Session scope satisfied topK; the global sub-query never ran
	if index.QueryCount() != 1 {
		t.Errorf("index queried %d times, want 1", index.QueryCount())
	}
}

func TestDualScopeRetriever_GlobalFillsRemainder(t *testing.T) {
	index, _, retriever := newTestRetriever()
	index.AddHit(indexHit("s1", "session-1", 0.1))
	index.AddHit(indexHit("g1", domain.GlobalScope, 0.2))
	index.AddHit(indexHit("g2", domain.GlobalScope, 0.3))

	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 3, 2*time.Second)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Metadata.SessionID != "session-1" {
		t.Error("session-scoped chunk is not first")
	}
	if index.QueryCount() != 2 {
		t.Errorf("index queried %d times, want 2", index.QueryCount())
	}
}

func TestDualScopeRetriever_DistanceToScore(t *testing.T) {
	index, _, retriever := newTestRetriever()
	index.AddHit(indexHit("near", "session-1", 0.25))
	index.AddHit(indexHit("far", "session-1", 1.8))
	index.AddHit(driven.IndexHit{
		ID:       "nodist",
		Metadata: domain.ChunkMetadata{SessionID: "session-1", SourceType: domain.SourcePDF},
	})

	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 5, 2*time.Second)

	byID := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	if s := byID["near"].Score; s == nil || *s != 0.75 {
		t.Errorf("near score = %v, want 0.75", s)
	}
	// Distances past 1.0 floor at 0, never go negative
	if s := byID["far"].Score; s == nil || *s != 0 {
		t.Errorf("far score = %v, want 0", s)
	}
	if byID["nodist"].Score != nil {
		t.Errorf("missing distance produced score %v, want nil", *byID["nodist"].Score)
	}
}

func TestDualScopeRetriever_IndexFailureDegrades(t *testing.T) {
	index, _, retriever := newTestRetriever()
	index.AddHit(indexHit("s1", "session-1", 0.1))
	index.SetFailAll(true)

	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 3, 2*time.Second)
	if chunks != nil {
		t.Errorf("got %d chunks from failing index, want none", len(chunks))
	}
}

func TestDualScopeRetriever_NoEmbedder(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	index.AddHit(indexHit("s1", "session-1", 0.1))
	services := runtime.NewServices(domain.NewRuntimeConfig("sqlite"))
	retriever := NewDualScopeRetriever(index, services, nil)

	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 3, 2*time.Second)
	if chunks != nil {
		t.Error("retrieval without an embedder should return nothing")
	}
	if index.QueryCount() != 0 {
		t.Errorf("index queried %d times without an embedder, want 0", index.QueryCount())
	}
}

func TestDualScopeRetriever_EmbeddingFailureDegrades(t *testing.T) {
	index, services, retriever := newTestRetriever()
	index.AddHit(indexHit("s1", "session-1", 0.1))

	embedder := mocks.NewMockEmbeddingService()
	embedder.SetFailNext(true)
	services.SetEmbeddingService(embedder)

	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 3, 2*time.Second)
	if chunks != nil {
		t.Error("retrieval with a failing embedder should return nothing")
	}
}

func TestDualScopeRetriever_TimeoutDegrades(t *testing.T) {
	index, _, retriever := newTestRetriever()
	index.AddHit(indexHit("s1", "session-1", 0.1))
	index.SetDelay(200 * time.Millisecond)

	start := time.Now()
	chunks := retriever.Retrieve(context.Background(), "query", "session-1", 3, 30*time.Millisecond)
	elapsed := time.Since(start)

	if len(chunks) != 0 {
		t.Errorf("got %d chunks past the deadline, want 0", len(chunks))
	}
	if elapsed > 150*time.Millisecond {
		t.Errorf("retrieval took %v, deadline not enforced", elapsed)
	}
}

func TestDualScopeRetriever_ZeroTopK(t *testing.T) {
	index, _, retriever := newTestRetriever()
	index.AddHit(indexHit("s1", "session-1", 0.1))

	if chunks := retriever.Retrieve(context.Background(), "query", "session-1", 0, time.Second); chunks != nil {
		t.Error("topK 0 should return nothing")
	}
}
