package services

import (
	"testing"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

func scoredChunk(id string, source domain.SourceType, fileID string, score float64) domain.Chunk {
	s := score
	return domain.Chunk{
		ID:   id,
		Text: "text " + id,
		Metadata: domain.ChunkMetadata{
			FileID:     fileID,
			SourceType: source,
		},
		Score: &s,
	}
}

func unscoredChunk(id string, source domain.SourceType, fileID string) domain.Chunk {
	return domain.Chunk{
		ID:   id,
		Text: "text " + id,
		Metadata: domain.ChunkMetadata{
			FileID:     fileID,
			SourceType: source,
		},
	}
}

func TestFilterAndRank_Threshold(t *testing.T) {
	chunks := []domain.Chunk{
		scoredChunk("a", domain.SourcePDF, "f1", 0.9),
		scoredChunk("b", domain.SourcePDF, "f1", 0.1),
		unscoredChunk("c", domain.SourcePDF, "f1"),
	}

	out := filterAndRank(chunks, nil, 0.2, domain.AllSourceTypes())

	if out.filteredCount != 2 {
		t.Errorf("filteredCount = %d, want 2", out.filteredCount)
	}
	for _, c := range out.ranked {
		if c.Score != nil && *c.Score < 0.2 {
			t.Errorf("chunk %s below threshold survived ranking", c.ID)
		}
	}
	// Unscored chunks pass the threshold filter
	if !containsChunk(out.ranked, "c") {
		t.Error("nil-score chunk was dropped by threshold filter")
	}
}

func TestFilterAndRank_SoftDelete(t *testing.T) {
	chunks := []domain.Chunk{
		scoredChunk("a", domain.SourcePDF, "deleted", 0.9),
		scoredChunk("b", domain.SourcePDF, "live", 0.8),
	}
	softDeleted := map[string]struct{}{"deleted": {}}

	out := filterAndRank(chunks, softDeleted, 0, domain.AllSourceTypes())

	if out.filteredCount != 1 {
		t.Errorf("filteredCount = %d, want 1", out.filteredCount)
	}
	if containsChunk(out.ranked, "a") {
		t.Error("soft-deleted chunk survived filtering")
	}
}

func TestFilterAndRank_PerSourceKeys(t *testing.T) {
	chunks := []domain.Chunk{
		scoredChunk("a", domain.SourcePDF, "f1", 0.9),
		scoredChunk("b", domain.SourceImage, "f2", 0.8),
	}

	out := filterAndRank(chunks, nil, 0, []domain.SourceType{domain.SourcePDF})

	// Every known source type appears in the per-source view
	for _, s := range domain.AllSourceTypes() {
		if _, ok := out.perSource[s]; !ok {
			t.Errorf("perSource missing key %q", s)
		}
	}

	// Disallowed sources are present but empty
	if len(out.perSource[domain.SourceImage]) != 0 {
		t.Errorf("disallowed source has %d chunks, want 0", len(out.perSource[domain.SourceImage]))
	}
	if len(out.perSource[domain.SourceAudio]) != 0 {
		t.Errorf("audio source has %d chunks, want 0", len(out.perSource[domain.SourceAudio]))
	}
	if len(out.perSource[domain.SourcePDF]) != 1 {
		t.Errorf("pdf source has %d chunks, want 1", len(out.perSource[domain.SourcePDF]))
	}

	// The overall pool only contains allowed sources
	if containsChunk(out.ranked, "b") {
		t.Error("disallowed chunk entered the overall pool")
	}
}

func TestFilterAndRank_SourcePurity(t *testing.T) {
	chunks := []domain.Chunk{
		scoredChunk("p1", domain.SourcePDF, "f1", 0.95),
		scoredChunk("i1", domain.SourceImage, "f2", 0.9),
		scoredChunk("a1", domain.SourceAudio, "f3", 0.85),
	}

	out := filterAndRank(chunks, nil, 0, []domain.SourceType{domain.SourceImage})

	if len(out.ranked) != 1 {
		t.Fatalf("ranked pool has %d chunks, want 1", len(out.ranked))
	}
	if out.ranked[0].Metadata.SourceType != domain.SourceImage {
		t.Errorf("ranked pool contains %q, want image only", out.ranked[0].Metadata.SourceType)
	}
}

func TestFilterAndRank_OverallOrdering(t *testing.T) {
	chunks := []domain.Chunk{
		scoredChunk("low", domain.SourcePDF, "f1", 0.3),
		scoredChunk("high", domain.SourceImage, "f2", 0.9),
		unscoredChunk("nil", domain.SourceAudio, "f3"),
		scoredChunk("mid", domain.SourcePDF, "f1", 0.6),
	}

	out := filterAndRank(chunks, nil, 0, domain.AllSourceTypes())

	want := []string{"high", "mid", "low", "nil"}
	if len(out.ranked) != len(want) {
		t.Fatalf("ranked pool has %d chunks, want %d", len(out.ranked), len(want))
	}
	for i, id := range want {
		if out.ranked[i].ID != id {
			t.Errorf("ranked[%d] = %s, want %s", i, out.ranked[i].ID, id)
		}
	}
}

func TestFilterAndRank_UnknownSourceCountedNotRanked(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "x", Metadata: domain.ChunkMetadata{FileID: "f1", SourceType: "video"}},
		scoredChunk("a", domain.SourcePDF, "f1", 0.9),
	}

	out := filterAndRank(chunks, nil, 0, domain.AllSourceTypes())

	if out.filteredCount != 2 {
		t.Errorf("filteredCount = %d, want 2", out.filteredCount)
	}
	if containsChunk(out.ranked, "x") {
		t.Error("unknown-source chunk entered the ranked pool")
	}
}

func TestSortByScoreDesc_StableTies(t *testing.T) {
	chunks := []domain.Chunk{
		scoredChunk("first", domain.SourcePDF, "f1", 0.5),
		scoredChunk("second", domain.SourcePDF, "f1", 0.5),
		unscoredChunk("n1", domain.SourcePDF, "f1"),
		unscoredChunk("n2", domain.SourcePDF, "f1"),
	}

	sortByScoreDesc(chunks)

	want := []string{"first", "second", "n1", "n2"}
	for i, id := range want {
		if chunks[i].ID != id {
			t.Errorf("chunks[%d] = %s, want %s", i, chunks[i].ID, id)
		}
	}
}

func containsChunk(chunks []domain.Chunk, id string) bool {
	for _, c := range chunks {
		if c.ID == id {
			return true
		}
	}
	return false
}
