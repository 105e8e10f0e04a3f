package listing

import (
	"html"
	"regexp"
	"strings"
)

// Row is a normalized table row: markup stripped, continuation resolved,
// link extracted. Company and Title are guaranteed non-empty.
type Row struct {
	Company  string
	Title    string
	Location string
	Link     string
}

// continuationGlyph marks a row that inherits the previous row's company.
const continuationGlyph = "↳"

var (
	tagRE      = regexp.MustCompile(`<[^>]+>`)
	brRE       = regexp.MustCompile(`(?i)<br\s*/?>`)
	linkRE     = regexp.MustCompile(`https?://[^)"'\s]+`)
	boldLinkRE = regexp.MustCompile(`\*\*\[(.*?)\].*`)
)

// StripMarkup converts an HTML-flavored cell to plain text: line breaks
// become ", ", entities are decoded, and remaining tags are removed.
func StripMarkup(cell string) string {
	cell = brRE.ReplaceAllString(cell, ", ")
	return strings.TrimSpace(tagRE.ReplaceAllString(html.UnescapeString(cell), ""))
}

// unwrapBoldLink collapses the **[Text](url)** construct to Text.
// Cells without the wrapper are returned unchanged.
func unwrapBoldLink(cell string) string {
	return boldLinkRE.ReplaceAllString(cell, "$1")
}

// FirstURL returns the first URL-shaped substring of s, or "".
func FirstURL(s string) string {
	return linkRE.FindString(s)
}

// NormalizeRows turns one table's raw rows into normalized rows. The
// last-seen company is threaded through this single scan and nowhere else,
// so continuation state cannot leak between tables. Rows that yield no link
// or an empty company/title are dropped.
func NormalizeRows(rows []RawRow) []Row {
	var out []Row
	lastCompany := ""
	for _, r := range rows {
		link := FirstURL(r.Application)
		if link == "" {
			link = FirstURL(r.Title)
		}
		if link == "" {
			// Without a link the row can be neither posted nor deduplicated.
			continue
		}

		var company string
		if strings.HasPrefix(r.Company, continuationGlyph) {
			// A continuation before any resolved company has nothing to inherit.
			if lastCompany == "" {
				continue
			}
			company = lastCompany
		} else {
			company = StripMarkup(unwrapBoldLink(r.Company))
			lastCompany = company
		}

		title := StripMarkup(unwrapBoldLink(r.Title))
		if company == "" || title == "" {
			continue
		}

		out = append(out, Row{
			Company:  company,
			Title:    title,
			Location: StripMarkup(r.Location),
			Link:     link,
		})
	}
	return out
}

// ParseDocument scans doc for job tables and normalizes every row, in
// document order.
func ParseDocument(doc string) []Row {
	var rows []Row
	for _, table := range ScanTables(doc) {
		rows = append(rows, NormalizeRows(table)...)
	}
	return rows
}
