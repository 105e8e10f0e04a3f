package model

import (
	"context"
	"strings"
)

// Category says which audience channel a record belongs to.
type Category string

const (
	CategoryIntern   Category = "intern"
	CategoryNewGrad  Category = "newgrad"
	CategoryFullTime Category = "fulltime"
)

// JobRecord is the canonical unit flowing through filtering and dedup.
// It is built per cycle and discarded once its admission decision is made;
// only the dedup surrogate is persisted.
type JobRecord struct {
	Company  string   // display name, markup stripped, continuation rows resolved
	Title    string   // role title
	Location string   // free-form location text
	Link     string   // first well-formed URL from the application or title cell
	Source   string   // provenance label, e.g. "J-SWE"
	Category Category // derived, never authoritative from the source
}

// Triple builds the dedup identity: lowercased company|title|location.
// Two records with the same triple are the same job, whatever the source.
func Triple(company, title, location string) string {
	return strings.ToLower(company) + "|" + strings.ToLower(title) + "|" + strings.ToLower(location)
}

// DedupKey returns the triple key for this record.
func (j JobRecord) DedupKey() string {
	return Triple(j.Company, j.Title, j.Location)
}

// RecordFetcher produces the records of one configured source for a cycle.
type RecordFetcher interface {
	FetchRecords(ctx context.Context) ([]JobRecord, error)
}

// RecordFilter decides whether a record survives the filter chain.
// The reason names the first predicate that rejected it.
type RecordFilter interface {
	Match(rec JobRecord) (ok bool, reason string)
}

// PostedStore is the durable ledger of jobs already delivered. Admit is the
// sole authority on novelty: an insert-if-absent whose return value says
// whether this call inserted the record.
type PostedStore interface {
	Exists(key string) (bool, error)
	ExistsLink(link string) (bool, error)
	Admit(key, link, source string) (bool, error)
}

// Notifier delivers a single record to its audience channel. A non-nil
// error means the record must not be admitted to the ledger.
type Notifier interface {
	Send(ctx context.Context, rec JobRecord) error
}
