package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobsentry/jobsentry/internal/filter"
	"github.com/jobsentry/jobsentry/internal/model"
)

// SearchQuery describes one term's search against an external job board.
type SearchQuery struct {
	Term     string
	Location string        // geographic scope, e.g. "United States"
	Limit    int           // result cap per term
	MaxAge   time.Duration // recency window; zero means board default
}

// BoardSearcher is the query-based job-search capability. Implementations
// own session/HTTP details; the pipeline only consumes the records.
type BoardSearcher interface {
	Search(ctx context.Context, q SearchQuery) ([]model.JobRecord, error)
}

// SearchSource runs a bucket of search terms against a board and emits the
// records whose title classification agrees with the bucket's expected
// category. Disagreeing records are dropped, never rerouted: category and
// destination channel must agree.
type SearchSource struct {
	label    string
	board    BoardSearcher
	terms    []string
	location string
	limit    int
	maxAge   time.Duration
	expect   model.Category // CategoryIntern, or the complementary category
	logger   *slog.Logger
}

// NewSearchSource creates a search bucket source.
func NewSearchSource(label string, board BoardSearcher, terms []string, location string, limit int, maxAge time.Duration, expect model.Category, logger *slog.Logger) *SearchSource {
	return &SearchSource{
		label:    label,
		board:    board,
		terms:    terms,
		location: location,
		limit:    limit,
		maxAge:   maxAge,
		expect:   expect,
		logger:   logger,
	}
}

// Label returns the bucket's provenance label.
func (s *SearchSource) Label() string { return s.label }

// FetchRecords queries each term in order. A failed term is logged and
// contributes zero records; it never aborts the remaining terms.
func (s *SearchSource) FetchRecords(ctx context.Context) ([]model.JobRecord, error) {
	var records []model.JobRecord
	for _, term := range s.terms {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}
		found, err := s.board.Search(ctx, SearchQuery{
			Term:     term,
			Location: s.location,
			Limit:    s.limit,
			MaxAge:   s.maxAge,
		})
		if err != nil {
			s.logger.Warn("search term failed", "source", s.label, "term", term, "error", err)
			continue
		}

		kept := 0
		for _, rec := range found {
			wantIntern := s.expect == model.CategoryIntern
			if filter.IsInternTitle(rec.Title) != wantIntern {
				continue
			}
			rec.Source = s.label
			rec.Category = s.expect
			records = append(records, rec)
			kept++
		}
		s.logger.Debug("search term done", "source", s.label, "term", term,
			"found", len(found), "kept", kept)
	}
	return records, nil
}

var _ model.RecordFetcher = (*SearchSource)(nil)

// String implements fmt.Stringer for log output.
func (q SearchQuery) String() string {
	return fmt.Sprintf("%q in %q (limit %d, max age %s)", q.Term, q.Location, q.Limit, q.MaxAge)
}
