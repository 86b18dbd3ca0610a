package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Index implements driven.VectorIndex against Chroma's REST API. One
// collection holds all chunks; scoping happens through metadata filters.
type Index struct {
	baseURL      string
	collection   string
	collectionID string
	httpClient   *http.Client
}

// Config holds Chroma connection configuration
type Config struct {
	// BaseURL is the Chroma endpoint (e.g., http://localhost:8000)
	BaseURL string

	// Collection is the collection name, created on connect if absent
	Collection string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Collection: "chunks",
		Timeout:    30 * time.Second,
	}
}

// Connect creates the Index and gets-or-creates its collection
func Connect(ctx context.Context, cfg Config) (*Index, error) {
	idx := &Index{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		collection: cfg.Collection,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if idx.collection == "" {
		idx.collection = "chunks"
	}

	if err := idx.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	return idx, nil
}

type createCollectionRequest struct {
	Name        string `json:"name"`
	GetOrCreate bool   `json:"get_or_create"`
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (x *Index) ensureCollection(ctx context.Context) error {
	var resp collectionResponse
	err := x.post(ctx, "/api/v1/collections", createCollectionRequest{
		Name:        x.collection,
		GetOrCreate: true,
	}, &resp)
	if err != nil {
		return err
	}
	if resp.ID == "" {
		return fmt.Errorf("chroma returned no collection id")
	}
	x.collectionID = resp.ID
	return nil
}

type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include"`
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Query runs a nearest-neighbour search scoped by filter
func (x *Index) Query(ctx context.Context, vector []float32, filter driven.IndexFilter, limit int) ([]driven.IndexHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	var resp queryResponse
	err := x.post(ctx, x.collectionPath("query"), queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        limit,
		Where:           whereClause(filter),
		Include:         []string{"documents", "metadatas", "distances"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	hits := make([]driven.IndexHit, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		hit := driven.IndexHit{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = metadataFromMap(resp.Metadatas[0][i])
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			d := resp.Distances[0][i]
			hit.Distance = &d
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
	Documents  []string         `json:"documents"`
}

// Add upserts chunks into the collection
func (x *Index) Add(ctx context.Context, ids []string, documents []string, metadatas []domain.ChunkMetadata, embeddings [][]float32) error {
	if len(ids) == 0 {
		return nil
	}

	metas := make([]map[string]any, len(metadatas))
	for i, m := range metadatas {
		metas[i] = metadataToMap(m)
	}

	return x.post(ctx, x.collectionPath("add"), addRequest{
		IDs:        ids,
		Embeddings: embeddings,
		Metadatas:  metas,
		Documents:  documents,
	}, nil)
}

type getRequest struct {
	Where   map[string]any `json:"where,omitempty"`
	Include []string       `json:"include"`
}

type getResponse struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

// Get returns all chunks matching filter, without scores
func (x *Index) Get(ctx context.Context, filter driven.IndexFilter) ([]driven.IndexHit, error) {
	var resp getResponse
	err := x.post(ctx, x.collectionPath("get"), getRequest{
		Where:   whereClause(filter),
		Include: []string{"documents", "metadatas"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	hits := make([]driven.IndexHit, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		hit := driven.IndexHit{ID: id}
		if i < len(resp.Documents) {
			hit.Text = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			hit.Metadata = metadataFromMap(resp.Metadatas[i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

type deleteRequest struct {
	Where map[string]any `json:"where,omitempty"`
}

// Delete removes all chunks matching filter
func (x *Index) Delete(ctx context.Context, filter driven.IndexFilter) error {
	return x.post(ctx, x.collectionPath("delete"), deleteRequest{
		Where: whereClause(filter),
	}, nil)
}

// Ping satisfies the HTTP server's health check interface
func (x *Index) Ping(ctx context.Context) error {
	return x.HealthCheck(ctx)
}

// HealthCheck verifies the Chroma server is reachable
func (x *Index) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/api/v1/heartbeat", nil)
	if err != nil {
		return err
	}
	resp, err := x.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chroma unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chroma returned status %d", resp.StatusCode)
	}
	return nil
}

func (x *Index) collectionPath(op string) string {
	return "/api/v1/collections/" + x.collectionID + "/" + op
}

func (x *Index) post(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(raw))
	}

	if respBody != nil {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// whereClause builds a Chroma metadata filter. Nil when unscoped; multiple
// conditions combine under $and.
func whereClause(filter driven.IndexFilter) map[string]any {
	var conds []map[string]any
	if filter.SessionID != "" {
		conds = append(conds, map[string]any{"session_id": filter.SessionID})
	}
	if filter.FileID != "" {
		conds = append(conds, map[string]any{"file_id": filter.FileID})
	}

	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return map[string]any{"$and": conds}
	}
}

func metadataToMap(m domain.ChunkMetadata) map[string]any {
	out := map[string]any{
		"file_id":     m.FileID,
		"session_id":  m.SessionID,
		"chunk_index": m.ChunkIndex,
		"source_type": string(m.SourceType),
	}
	if m.StartTime != nil {
		out["start_time"] = *m.StartTime
	}
	if m.EndTime != nil {
		out["end_time"] = *m.EndTime
	}
	return out
}

// metadataFromMap tolerates loosely typed metadata: chunk_index may arrive
// as a number or a string, and a missing or garbled value maps to 0. A
// missing source_type maps to the default.
func metadataFromMap(m map[string]any) domain.ChunkMetadata {
	meta := domain.ChunkMetadata{
		SourceType: domain.DefaultSourceType,
	}
	if m == nil {
		return meta
	}

	if v, ok := m["file_id"].(string); ok {
		meta.FileID = v
	}
	if v, ok := m["session_id"].(string); ok {
		meta.SessionID = v
	}
	if v, ok := m["source_type"].(string); ok && v != "" {
		meta.SourceType = domain.SourceType(v)
	}
	meta.ChunkIndex = intFromAny(m["chunk_index"])

	if v, ok := m["start_time"].(float64); ok {
		meta.StartTime = &v
	}
	if v, ok := m["end_time"].(float64); ok {
		meta.EndTime = &v
	}
	return meta
}

func intFromAny(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return 0
}
