package domain

// GlobalScope is the session sentinel applied to chunks that are not bound
// to any particular chat session. A dual-scope retrieval always queries the
// caller's session and this scope.
const GlobalScope = "GLOBAL"

// SourceType is the modality a chunk originated from
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceImage SourceType = "image"
	SourceAudio SourceType = "audio"
)

// DefaultSourceType is assumed for chunks indexed before source tagging
// existed; decode boundaries apply it when the field is missing.
const DefaultSourceType = SourcePDF

// AllSourceTypes returns the full default allow-list
func AllSourceTypes() []SourceType {
	return []SourceType{SourcePDF, SourceImage, SourceAudio}
}

// Valid reports whether s is a recognised source type
func (s SourceType) Valid() bool {
	switch s {
	case SourcePDF, SourceImage, SourceAudio:
		return true
	}
	return false
}

// ChunkMetadata carries the provenance of an indexed chunk
type ChunkMetadata struct {
	FileID     string     `json:"file_id"`
	SessionID  string     `json:"session_id"` // GlobalScope when not session-bound
	ChunkIndex int        `json:"chunk_index"`
	SourceType SourceType `json:"source_type"`

	// Timing window within the source media, audio chunks only
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

// Chunk is a contiguous slice of extracted text with provenance metadata.
// Score is a similarity in [0,1] derived from the index distance
// (1 - distance, floored at zero), or nil when the index provides none.
// Chunks are immutable once stored.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text,omitempty"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    *float64      `json:"score"`
}

// SimilarityFromDistance converts an index distance into a similarity score.
// Returns nil when no distance is available.
func SimilarityFromDistance(distance *float64) *float64 {
	if distance == nil {
		return nil
	}
	sim := 1.0 - *distance
	if sim < 0 {
		sim = 0
	}
	return &sim
}
