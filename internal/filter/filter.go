// Package filter implements the sequential predicate chain every record must
// pass before delivery, plus intern/full-time title classification.
package filter

import (
	"regexp"
	"strings"

	"github.com/jobsentry/jobsentry/internal/model"
)

// Vocabulary is a word-boundary, case-insensitive matcher over a set of
// terms. Terms are joined as regular-expression alternatives, so patterns
// like "full[- ]?stack" are allowed.
type Vocabulary struct {
	re *regexp.Regexp
}

// NewVocabulary compiles the given terms. An empty term list yields a
// vocabulary that matches nothing.
func NewVocabulary(terms []string) (*Vocabulary, error) {
	if len(terms) == 0 {
		return &Vocabulary{}, nil
	}
	re, err := regexp.Compile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
	if err != nil {
		return nil, err
	}
	return &Vocabulary{re: re}, nil
}

// MatchAny reports whether any of the texts contains a vocabulary term.
func (v *Vocabulary) MatchAny(texts ...string) bool {
	if v == nil || v.re == nil {
		return false
	}
	for _, t := range texts {
		if v.re.MatchString(t) {
			return true
		}
	}
	return false
}

// internVocab classifies a title as an internship posting.
var internVocab = regexp.MustCompile(`(?i)\b(intern|internship|apprentice|co[- ]?op|coop|student|trainee)\b`)

// IsInternTitle reports whether the title carries internship vocabulary.
func IsInternTitle(title string) bool {
	return internVocab.MatchString(title)
}

// Classify returns CategoryIntern for internship-vocabulary titles and the
// given complementary category otherwise. Used for sources that lack an
// inherent category (free-text search results).
func Classify(title string, complement model.Category) model.Category {
	if IsInternTitle(title) {
		return model.CategoryIntern
	}
	return complement
}

// Chain applies the rejection predicates in a fixed order; the first hit
// short-circuits. All predicates are pure, so evaluation order can never
// change the final accept/reject outcome, only the reported reason.
type Chain struct {
	blacklist  map[string]struct{}
	badRoles   []string
	techTerms  *Vocabulary
	quarantine []string
}

// NewChain builds a filter chain.
//
// blacklist is matched exactly and case-sensitively against the company.
// badRoles and quarantine are matched as plain substrings of the lowercased
// title: this deliberately loose containment (a token like "ii" hits
// anywhere in the title) mirrors how the token lists were curated.
// techTerms is a word-boundary vocabulary the title or company must match.
func NewChain(blacklist, badRoles, techTerms, quarantine []string) (*Chain, error) {
	tech, err := NewVocabulary(techTerms)
	if err != nil {
		return nil, err
	}
	bl := make(map[string]struct{}, len(blacklist))
	for _, c := range blacklist {
		bl[c] = struct{}{}
	}
	lower := func(ss []string) []string {
		out := make([]string, 0, len(ss))
		for _, s := range ss {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &Chain{
		blacklist:  bl,
		badRoles:   lower(badRoles),
		techTerms:  tech,
		quarantine: lower(quarantine),
	}, nil
}

// Match runs the chain. The reason names the rejecting predicate.
func (c *Chain) Match(rec model.JobRecord) (bool, string) {
	if _, ok := c.blacklist[rec.Company]; ok {
		return false, "blacklisted_company"
	}

	title := strings.ToLower(rec.Title)
	for _, bad := range c.badRoles {
		if strings.Contains(title, bad) {
			return false, "bad_role"
		}
	}

	if !c.techTerms.MatchAny(rec.Title, rec.Company) {
		return false, "off_topic"
	}

	for _, q := range c.quarantine {
		if strings.Contains(title, q) {
			return false, "quarantined"
		}
	}

	return true, ""
}
