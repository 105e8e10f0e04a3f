// Package poller drives one ingestion cycle per source: fetch → filter →
// dedup → deliver → admit. Delivery always precedes admission, so a record
// whose delivery fails stays eligible for the next cycle.
package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobsentry/jobsentry/internal/model"
)

// CycleStats counts what happened to a source's records in one cycle.
type CycleStats struct {
	Source     string
	Fetched    int // records produced by the fetcher
	Rejected   int // dropped by the filter chain
	Duplicates int // already in the ledger
	Failed     int // delivery failed; not admitted, retried next cycle
	Posted     int // delivered and admitted
}

// Add accumulates other into s for cross-source aggregates.
func (s *CycleStats) Add(other CycleStats) {
	s.Fetched += other.Fetched
	s.Rejected += other.Rejected
	s.Duplicates += other.Duplicates
	s.Failed += other.Failed
	s.Posted += other.Posted
}

// SourcePoller owns the full pipeline for a single source.
type SourcePoller struct {
	Name        string
	fetcher     model.RecordFetcher
	filter      model.RecordFilter
	store       model.PostedStore
	notifier    model.Notifier
	dedupByLink bool
	logger      *slog.Logger
}

// NewSourcePoller creates a poller wired with all its dependencies.
// dedupByLink additionally treats a previously posted link as a duplicate,
// for sources whose links are stable job identifiers.
func NewSourcePoller(
	name string,
	fetcher model.RecordFetcher,
	filter model.RecordFilter,
	store model.PostedStore,
	notifier model.Notifier,
	dedupByLink bool,
	logger *slog.Logger,
) *SourcePoller {
	return &SourcePoller{
		Name:        name,
		fetcher:     fetcher,
		filter:      filter,
		store:       store,
		notifier:    notifier,
		dedupByLink: dedupByLink,
		logger:      logger,
	}
}

// Poll runs one cycle for this source. A fetch error returns early with
// zero-record stats; per-record problems never abort the rest of the batch.
// Cancellation is honored between records, never mid-delivery.
func (p *SourcePoller) Poll(ctx context.Context) (CycleStats, error) {
	stats := CycleStats{Source: p.Name}

	records, err := p.fetcher.FetchRecords(ctx)
	if err != nil {
		return stats, fmt.Errorf("polling %s: %w", p.Name, err)
	}
	stats.Fetched = len(records)

	for _, rec := range records {
		if ctx.Err() != nil {
			return stats, fmt.Errorf("polling %s: %w", p.Name, ctx.Err())
		}

		if ok, reason := p.filter.Match(rec); !ok {
			stats.Rejected++
			p.logger.Debug("record rejected",
				"source", p.Name, "reason", reason, "company", rec.Company, "title", rec.Title)
			continue
		}

		key := rec.DedupKey()
		seen, err := p.store.Exists(key)
		if err != nil {
			return stats, fmt.Errorf("polling %s: checking triple: %w", p.Name, err)
		}
		if !seen && p.dedupByLink {
			seen, err = p.store.ExistsLink(rec.Link)
			if err != nil {
				return stats, fmt.Errorf("polling %s: checking link: %w", p.Name, err)
			}
		}
		if seen {
			stats.Duplicates++
			continue
		}

		if err := p.notifier.Send(ctx, rec); err != nil {
			// No admission on failed delivery: the record stays eligible.
			stats.Failed++
			p.logger.Warn("delivery failed",
				"source", p.Name, "company", rec.Company, "title", rec.Title, "error", err)
			continue
		}

		inserted, err := p.store.Admit(key, rec.Link, rec.Source)
		if err != nil {
			return stats, fmt.Errorf("polling %s: admitting: %w", p.Name, err)
		}
		if !inserted {
			// Lost a race with an overlapping cycle after delivery; the
			// accepted drift window of the at-least-once guarantee.
			stats.Duplicates++
			continue
		}
		stats.Posted++
	}

	p.logger.Info("polled source",
		"source", p.Name,
		"fetched", stats.Fetched,
		"rejected", stats.Rejected,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed,
		"posted", stats.Posted,
	)

	return stats, nil
}
