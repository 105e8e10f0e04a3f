// Package adapter contains the fetch side of the pipeline: source adapters
// that turn remote documents or search results into JobRecords. Parsing
// itself is pure and lives in internal/listing.
package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jobsentry/jobsentry/internal/filter"
	"github.com/jobsentry/jobsentry/internal/listing"
	"github.com/jobsentry/jobsentry/internal/model"
)

const offSeasonSuffix = " (Off-Season)"

// ListSource fetches a community-maintained README job list and normalizes
// its table rows into records. Per-source behavior (off-season tagging,
// keyword gating, labeling, category) is declarative, set at construction
// from config rather than branched on source identity at call sites.
type ListSource struct {
	label     string
	rawURL    string
	category  model.Category
	offSeason bool
	gate      *filter.Vocabulary // nil when the source is not keyword-gated
	client    *http.Client
}

// NewListSource creates an adapter for one README list.
func NewListSource(label, rawURL string, category model.Category, offSeason bool, gate *filter.Vocabulary, client *http.Client) *ListSource {
	return &ListSource{
		label:     label,
		rawURL:    rawURL,
		category:  category,
		offSeason: offSeason,
		gate:      gate,
		client:    client,
	}
}

// Label returns the source's provenance label.
func (s *ListSource) Label() string { return s.label }

// FetchRecords downloads the raw document and returns its usable rows as
// records with this source's transforms applied.
func (s *ListSource) FetchRecords(ctx context.Context) ([]model.JobRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list fetch for %s: %w", s.label, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3.raw")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list fetch for %s: %w", s.label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list fetch for %s: %w", s.label, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list fetch for %s: %w", s.label, err)
	}

	var records []model.JobRecord
	for _, row := range listing.ParseDocument(string(body)) {
		if s.gate != nil && !s.gate.MatchAny(row.Title, row.Company) {
			continue
		}
		company := row.Company
		if s.offSeason {
			company += offSeasonSuffix
		}
		records = append(records, model.JobRecord{
			Company:  company,
			Title:    row.Title,
			Location: row.Location,
			Link:     row.Link,
			Source:   s.label,
			Category: s.category,
		})
	}
	return records, nil
}
