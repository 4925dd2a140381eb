// Package search looks up candidate listings for an organization name on the
// telephone-directory site and parses its result pages.
package search

import (
	"net/url"
	"strings"

	"github.com/sells-group/orglink/internal/normalize"
)

const searchPath = "/searchnumber.do"

// Term turns a query name into the directory search term: all whitespace,
// ASCII and full-width, is removed.
func Term(name string) string {
	return normalize.RemoveSpaces(name)
}

// URL builds the directory search URL for term.
func URL(base, term string) string {
	return strings.TrimRight(base, "/") + searchPath + "?number=" + url.QueryEscape(term)
}

// DetailURL resolves a listing's detail link against base. Absolute links
// are returned unchanged; an empty link stays empty.
func DetailURL(base, href string) string {
	if href == "" {
		return ""
	}
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
