package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobsentry/jobsentry/internal/model"
)

const linkedinGuestURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

// LinkedInBoard searches LinkedIn's guest job listings. No session or
// login: the guest endpoint returns an HTML fragment of job cards, which
// is parsed with goquery. Cards missing a company or title are skipped.
type LinkedInBoard struct {
	client  *http.Client
	baseURL string
}

// NewLinkedInBoard creates a guest-search client.
func NewLinkedInBoard(client *http.Client) *LinkedInBoard {
	return &LinkedInBoard{client: client, baseURL: linkedinGuestURL}
}

// Search implements BoardSearcher.
func (b *LinkedInBoard) Search(ctx context.Context, q SearchQuery) ([]model.JobRecord, error) {
	params := url.Values{}
	params.Set("keywords", q.Term)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.MaxAge > 0 {
		// f_TPR=r<seconds> restricts to postings newer than the window.
		params.Set("f_TPR", "r"+strconv.Itoa(int(q.MaxAge.Seconds())))
	}
	params.Set("start", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: %w", q.Term, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; jobsentry)")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: %w", q.Term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linkedin search %q: %w", q.Term, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		})
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: parsing response: %w", q.Term, err)
	}

	var records []model.JobRecord
	doc.Find("div.base-search-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if q.Limit > 0 && len(records) >= q.Limit {
			return false
		}

		company := cleanCardText(card.Find(".base-search-card__subtitle").First().Text())
		title := cleanCardText(card.Find(".base-search-card__title").First().Text())
		if company == "" || title == "" {
			return true
		}

		link, _ := card.Find("a.base-card__full-link").First().Attr("href")
		if link == "" {
			link, _ = card.Find("a").First().Attr("href")
		}
		link = canonicalJobURL(link)
		if link == "" {
			return true
		}

		records = append(records, model.JobRecord{
			Company:  company,
			Title:    title,
			Location: cleanCardText(card.Find(".job-search-card__location").First().Text()),
			Link:     link,
		})
		return true
	})

	return records, nil
}

// cleanCardText collapses the whitespace LinkedIn pads its card text with.
func cleanCardText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// canonicalJobURL strips the query string and fragment from a job link so
// tracking parameters do not defeat link-based dedup.
func canonicalJobURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
