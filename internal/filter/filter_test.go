package filter

import (
	"testing"

	"github.com/jobsentry/jobsentry/internal/model"
)

func testChain(t *testing.T) *Chain {
	t.Helper()
	c, err := NewChain(
		[]string{"HireMeFast LLC", "Team Remotely Inc"},
		[]string{"senior", "lead", "unpaid", "ii"},
		[]string{"software", "engineer", "data", "ai", "machine learning", "full[- ]?stack"},
		nil,
	)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	return c
}

func rec(company, title string) model.JobRecord {
	return model.JobRecord{Company: company, Title: title, Location: "Remote", Link: "https://x.co/1"}
}

func TestChain_Match(t *testing.T) {
	c := testChain(t)

	tests := []struct {
		name       string
		rec        model.JobRecord
		wantOK     bool
		wantReason string
	}{
		{"accepts tech intern", rec("Acme", "Software Engineer Intern"), true, ""},
		{"blacklist beats everything", rec("HireMeFast LLC", "Software Engineer Intern"), false, "blacklisted_company"},
		{"blacklist is case sensitive", rec("hiremefast llc", "Software Engineer"), true, ""},
		{"bad role substring", rec("Acme", "Senior Software Engineer"), false, "bad_role"},
		{"loose containment hits mid-word", rec("Acme", "Engineer III"), false, "bad_role"},
		{"off-topic rejected", rec("Acme", "Barista"), false, "off_topic"},
		{"tech match via company", rec("Acme AI", "Research Assistant"), true, ""},
		{"fullstack pattern alternative", rec("Acme", "Full-Stack Developer"), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := c.Match(tt.rec)
			if ok != tt.wantOK || reason != tt.wantReason {
				t.Errorf("Match(%q/%q) = (%v, %q), want (%v, %q)",
					tt.rec.Company, tt.rec.Title, ok, reason, tt.wantOK, tt.wantReason)
			}
		})
	}
}

func TestChain_Quarantine(t *testing.T) {
	c, err := NewChain(nil, nil, []string{"software"}, []string{"2025"})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	if ok, _ := c.Match(rec("Acme", "Software Intern Summer 2025")); ok {
		t.Error("expected quarantine term to reject")
	}
	if ok, _ := c.Match(rec("Acme", "Software Intern Summer 2026")); !ok {
		t.Error("expected non-quarantined title to pass")
	}
}

func TestIsInternTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Software Engineer Intern", true},
		{"2026 Internship - Data", true},
		{"Engineering Co-op", true},
		{"Engineering Coop", true},
		{"Student Trainee Program", true},
		{"Software Engineer", false},
		{"International Sales", false}, // word boundary: "intern" must stand alone
	}
	for _, tt := range tests {
		if got := IsInternTitle(tt.title); got != tt.want {
			t.Errorf("IsInternTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := Classify("ML Intern", model.CategoryFullTime); got != model.CategoryIntern {
		t.Errorf("Classify intern title = %v", got)
	}
	if got := Classify("ML Engineer", model.CategoryFullTime); got != model.CategoryFullTime {
		t.Errorf("Classify non-intern title = %v", got)
	}
	if got := Classify("ML Engineer", model.CategoryNewGrad); got != model.CategoryNewGrad {
		t.Errorf("Classify complement = %v", got)
	}
}

func TestVocabulary_Empty(t *testing.T) {
	v, err := NewVocabulary(nil)
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	if v.MatchAny("anything at all") {
		t.Error("empty vocabulary must match nothing")
	}
}
