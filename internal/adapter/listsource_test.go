package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobsentry/jobsentry/internal/filter"
	"github.com/jobsentry/jobsentry/internal/model"
)

const readme = `# Internship List

| Company | Title | Location | Application |
| ------- | ----- | -------- | ----------- |
| **[Acme](https://acme.io)** | **[Software Engineer Intern](https://x.co/1)** | NYC | [Apply](https://x.co/1) |
| ↳ | **[Security Intern](https://x.co/2)** | Remote | [Apply](https://x.co/2) |
| BrewCo | Barista Trainee | Seattle | [Apply](https://x.co/3) |
`

func TestListSource_FetchRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3.raw" {
			t.Errorf("Accept header = %q", got)
		}
		w.Write([]byte(readme))
	}))
	defer srv.Close()

	src := NewListSource("OH", srv.URL, model.CategoryIntern, false, nil, srv.Client())
	records, err := src.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}
	if records[1].Company != "Acme" || records[1].Title != "Security Intern" {
		t.Errorf("continuation row not resolved: %+v", records[1])
	}
	for _, rec := range records {
		if rec.Source != "OH" || rec.Category != model.CategoryIntern {
			t.Errorf("source fields not applied: %+v", rec)
		}
	}
}

func TestListSource_OffSeasonSuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(readme))
	}))
	defer srv.Close()

	src := NewListSource("OH-Off-Season", srv.URL, model.CategoryIntern, true, nil, srv.Client())
	records, err := src.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if records[0].Company != "Acme (Off-Season)" {
		t.Errorf("Company = %q, want off-season suffix", records[0].Company)
	}
	// Continuation rows inherit the bare company, then get the same suffix.
	if records[1].Company != "Acme (Off-Season)" {
		t.Errorf("continuation Company = %q, want off-season suffix", records[1].Company)
	}
}

func TestListSource_KeywordGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(readme))
	}))
	defer srv.Close()

	gate, err := filter.NewVocabulary([]string{"ai", "machine learning", "cybersecurity", "quant", "quantum"})
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}

	src := NewListSource("J-ENG", srv.URL, model.CategoryIntern, false, gate, srv.Client())
	records, err := src.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	// None of the sample titles/companies carry gate vocabulary.
	if len(records) != 0 {
		t.Errorf("expected gate to drop all records, got %+v", records)
	}
}

func TestListSource_HTTPErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewListSource("OH", srv.URL, model.CategoryIntern, false, nil, srv.Client())
	_, err := src.FetchRecords(context.Background())
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 30 {
		t.Errorf("RetryAfter = %v, want 30s", httpErr.RetryAfter)
	}
}
