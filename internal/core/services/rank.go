package services

import (
	"sort"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// rankOutcome carries the result of filtering and ranking a candidate set.
// filteredCount is the number of chunks that survived the soft-delete and
// threshold filters, including chunks of unknown source types; the skip
// decision depends on it.
type rankOutcome struct {
	ranked        []domain.Chunk
	perSource     map[domain.SourceType][]domain.Chunk
	filteredCount int
}

// filterAndRank filters and ranks retrieved chunks. The step order is load
// bearing: soft-delete drop, then threshold drop (nil scores always pass),
// then partition by source type, then per-partition ranking, then the
// overall pool built from allowed partitions only. Disallowed partitions
// appear in the per-source view as empty lists. Sorting is stable, so equal
// and nil scores keep their pre-ranking (session-first) order.
func filterAndRank(chunks []domain.Chunk, softDeleted map[string]struct{}, threshold float64, allowed []domain.SourceType) rankOutcome {
	filtered := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if _, deleted := softDeleted[c.Metadata.FileID]; deleted {
			continue
		}
		if c.Score != nil && *c.Score < threshold {
			continue
		}
		filtered = append(filtered, c)
	}

	// Unknown source types are dropped from partitioning but still counted
	// in filteredCount above.
	partitions := make(map[domain.SourceType][]domain.Chunk)
	for _, c := range filtered {
		if !c.Metadata.SourceType.Valid() {
			continue
		}
		partitions[c.Metadata.SourceType] = append(partitions[c.Metadata.SourceType], c)
	}

	for _, part := range partitions {
		sortByScoreDesc(part)
	}

	allowedSet := make(map[domain.SourceType]struct{}, len(allowed))
	for _, s := range allowed {
		allowedSet[s] = struct{}{}
	}

	perSource := make(map[domain.SourceType][]domain.Chunk, len(domain.AllSourceTypes()))
	var ranked []domain.Chunk
	for _, s := range domain.AllSourceTypes() {
		if _, ok := allowedSet[s]; !ok {
			perSource[s] = []domain.Chunk{}
			continue
		}
		part := partitions[s]
		if part == nil {
			part = []domain.Chunk{}
		}
		perSource[s] = part
		ranked = append(ranked, part...)
	}

	sortByScoreDesc(ranked)

	return rankOutcome{
		ranked:        ranked,
		perSource:     perSource,
		filteredCount: len(filtered),
	}
}

// sortByScoreDesc sorts chunks by score descending with nil scores last.
// Stable, so ties keep input order.
func sortByScoreDesc(chunks []domain.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		si, sj := chunks[i].Score, chunks[j].Score
		if si == nil {
			return false
		}
		if sj == nil {
			return true
		}
		return *si > *sj
	})
}
