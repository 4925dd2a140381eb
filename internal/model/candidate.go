package model

import "strings"

// Candidate is one listing returned by the directory search for a query.
// Empty fields mean the value was not found on the page.
type Candidate struct {
	Tel         string `json:"tel"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	DetailURL   string `json:"detail_url"`
}

// Field accessors used to bind selectors to a candidate column.

// LocationOf returns c.Location.
func LocationOf(c Candidate) string { return c.Location }

// CompanyNameOf returns c.CompanyName.
func CompanyNameOf(c Candidate) string { return c.CompanyName }

// telSeparator joins the plain and hyphenated forms in directory listings,
// e.g. "7777889999 | 7777-88-9999".
const telSeparator = "|"

// SplitTel splits a raw telephone field into its digits-only and hyphenated
// forms. Without a separator the trimmed field is returned as the first value
// and the second is empty. Parts after the second are ignored.
func SplitTel(raw string) (digits, hyphenated string) {
	if !strings.Contains(raw, telSeparator) {
		return strings.TrimSpace(raw), ""
	}
	parts := strings.SplitN(raw, telSeparator, 3)
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
