package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jobsentry/jobsentry/internal/model"
)

// --- Fakes ---

type fakeFetcher struct {
	records []model.JobRecord
	err     error
}

func (f *fakeFetcher) FetchRecords(_ context.Context) ([]model.JobRecord, error) {
	return f.records, f.err
}

// memStore is a map-backed ledger for testing dedup semantics.
type memStore struct {
	triples map[string]bool
	links   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{triples: make(map[string]bool), links: make(map[string]bool)}
}

func (s *memStore) Exists(key string) (bool, error)      { return s.triples[key], nil }
func (s *memStore) ExistsLink(link string) (bool, error) { return link != "" && s.links[link], nil }

func (s *memStore) Admit(key, link, source string) (bool, error) {
	if s.triples[key] {
		return false, nil
	}
	s.triples[key] = true
	if link != "" {
		s.links[link] = true
	}
	return true, nil
}

// recordingNotifier records deliveries; failKeys makes specific companies fail.
type recordingNotifier struct {
	sent    []model.JobRecord
	failFor map[string]error
}

func (n *recordingNotifier) Send(_ context.Context, rec model.JobRecord) error {
	if err := n.failFor[rec.Company]; err != nil {
		return err
	}
	n.sent = append(n.sent, rec)
	return nil
}

type acceptAll struct{}

func (acceptAll) Match(_ model.JobRecord) (bool, string) { return true, "" }

type rejectCompany string

func (r rejectCompany) Match(rec model.JobRecord) (bool, string) {
	if rec.Company == string(r) {
		return false, "blacklisted_company"
	}
	return true, ""
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeRecords(companies ...string) []model.JobRecord {
	recs := make([]model.JobRecord, len(companies))
	for i, c := range companies {
		recs[i] = model.JobRecord{
			Company:  c,
			Title:    "Software Engineer Intern",
			Location: "US",
			Link:     "https://example.com/" + c,
			Source:   "test",
			Category: model.CategoryIntern,
		}
	}
	return recs
}

// --- Tests ---

func TestPoll_FilterDedupDeliverAdmit(t *testing.T) {
	store := newMemStore()
	// "b" is already in the ledger.
	store.Admit(model.Triple("b", "Software Engineer Intern", "US"), "", "test")

	n := &recordingNotifier{}
	p := NewSourcePoller("test",
		&fakeFetcher{records: makeRecords("a", "b", "c")},
		rejectCompany("c"), store, n, false, discardLogger())

	stats, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}

	want := CycleStats{Source: "test", Fetched: 3, Rejected: 1, Duplicates: 1, Posted: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if len(n.sent) != 1 || n.sent[0].Company != "a" {
		t.Errorf("delivered %+v, want only company a", n.sent)
	}
}

func TestPoll_SecondRunPostsNothing(t *testing.T) {
	store := newMemStore()
	n := &recordingNotifier{}
	p := NewSourcePoller("test",
		&fakeFetcher{records: makeRecords("a", "b")},
		acceptAll{}, store, n, false, discardLogger())

	first, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("first Poll: %v", err)
	}
	second, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("second Poll: %v", err)
	}

	if first.Posted != 2 {
		t.Errorf("first cycle Posted = %d, want 2", first.Posted)
	}
	if second.Posted != 0 || second.Duplicates != 2 {
		t.Errorf("second cycle = %+v, want all duplicates", second)
	}
	if len(n.sent) != 2 {
		t.Errorf("total deliveries = %d, want exactly 2", len(n.sent))
	}
}

func TestPoll_DeliveryFailureBlocksAdmission(t *testing.T) {
	store := newMemStore()
	n := &recordingNotifier{failFor: map[string]error{"a": errors.New("channel down")}}
	p := NewSourcePoller("test",
		&fakeFetcher{records: makeRecords("a", "b")},
		acceptAll{}, store, n, false, discardLogger())

	stats, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if stats.Failed != 1 || stats.Posted != 1 {
		t.Errorf("stats = %+v, want 1 failed 1 posted", stats)
	}

	// The failed record was never admitted: a later cycle retries it.
	n.failFor = nil
	stats, err = p.Poll(context.Background())
	if err != nil {
		t.Fatalf("retry Poll: %v", err)
	}
	if stats.Posted != 1 || stats.Duplicates != 1 {
		t.Errorf("retry stats = %+v, want the failed record posted now", stats)
	}
}

func TestPoll_FetchErrorYieldsZeroRecords(t *testing.T) {
	p := NewSourcePoller("test",
		&fakeFetcher{err: errors.New("HTTP 500")},
		acceptAll{}, newMemStore(), &recordingNotifier{}, false, discardLogger())

	stats, err := p.Poll(context.Background())
	if err == nil {
		t.Fatal("expected fetch error to surface")
	}
	if stats.Fetched != 0 || stats.Posted != 0 {
		t.Errorf("stats after fetch error = %+v, want zeros", stats)
	}
}

func TestPoll_LinkDedup(t *testing.T) {
	store := newMemStore()
	// Same link was posted under a different triple.
	store.Admit("other|title|loc", "https://example.com/a", "test")

	recs := makeRecords("a")
	n := &recordingNotifier{}

	// Without link dedup, the record is new.
	p := NewSourcePoller("test", &fakeFetcher{records: recs}, acceptAll{},
		store, n, false, discardLogger())
	stats, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if stats.Posted != 1 {
		t.Fatalf("without link dedup Posted = %d, want 1", stats.Posted)
	}

	// With link dedup, a fresh store seeing the same link treats it as seen.
	store2 := newMemStore()
	store2.Admit("other|title|loc", "https://example.com/b", "test")
	p2 := NewSourcePoller("test", &fakeFetcher{records: makeRecords("b")}, acceptAll{},
		store2, n, true, discardLogger())
	stats, err = p2.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if stats.Duplicates != 1 || stats.Posted != 0 {
		t.Errorf("with link dedup stats = %+v, want 1 duplicate", stats)
	}
}

func TestPoll_CancellationStopsBetweenRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := &recordingNotifier{}
	p := NewSourcePoller("test",
		&fakeFetcher{records: makeRecords("a", "b")},
		acceptAll{}, newMemStore(), n, false, discardLogger())

	_, err := p.Poll(ctx)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if len(n.sent) != 0 {
		t.Errorf("no record should be delivered after cancellation, got %d", len(n.sent))
	}
}

func TestCycleStats_Add(t *testing.T) {
	total := CycleStats{Source: "all"}
	total.Add(CycleStats{Fetched: 3, Posted: 1})
	total.Add(CycleStats{Fetched: 2, Rejected: 1, Duplicates: 1})

	if total.Fetched != 5 || total.Posted != 1 || total.Rejected != 1 || total.Duplicates != 1 {
		t.Errorf("aggregate = %+v", total)
	}
}
