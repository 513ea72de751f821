package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SearchArchives scans candidate archives overlapping the query's table and
// date filters, unpackages each, and filters rows in memory. One unreadable
// candidate is logged and skipped; partial results beat no results.
func (s *Service) SearchArchives(ctx context.Context, query SearchQuery) SearchResult {
	started := time.Now()
	s.Metrics.SearchRun()

	candidates, err := s.Store.FindCandidates(ctx, query)
	if err != nil {
		return SearchResult{Error: fmt.Sprintf("candidate lookup failed: %v", err)}
	}

	var matches []map[string]any
	var searched []string
	for _, candidate := range candidates {
		export, err := s.Packager.Unpackage(candidate)
		if err != nil {
			slog.Warn("search: skipping unreadable archive", "uuid", candidate.UUID, "err", err)
			continue
		}
		searched = append(searched, candidate.UUID)
		for _, row := range export.Data {
			if MatchesQuery(row, query) {
				matches = append(matches, row)
			}
		}
	}

	total := len(matches)
	paged := Paginate(matches, query.Limit, query.Offset)
	return SearchResult{
		Success:          true,
		Matches:          paged,
		TotalMatched:     total,
		ArchivesSearched: searched,
		DurationMs:       time.Since(started).Milliseconds(),
	}
}
