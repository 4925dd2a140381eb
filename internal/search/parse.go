package search

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sells-group/orglink/internal/model"
)

// Markup of a directory result page.
const (
	resultClass   = "frame-728-orange-l"
	telClass      = "red"
	titleClass    = "title-background-orange"
	detailClass   = "result"
	addressPrefix = "住所："
)

// ParseResults extracts one Candidate per result block of a directory search
// page. Blocks without a telephone number or a company name are skipped.
func ParseResults(r io.Reader) ([]model.Candidate, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "search: parse html")
	}

	var out []model.Candidate
	for _, block := range findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, resultClass)
	}) {
		c := parseBlock(block)
		if c.Tel == "" || c.CompanyName == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func parseBlock(block *html.Node) model.Candidate {
	var c model.Candidate

	if n := findFirst(block, func(n *html.Node) bool {
		return n.DataAtom == atom.Span && hasClass(n, telClass)
	}); n != nil {
		c.Tel = textOf(n)
	}

	if n := findFirst(block, func(n *html.Node) bool {
		return n.DataAtom == atom.A && n.Parent != nil && n.Parent.DataAtom == atom.Strong
	}); n != nil {
		c.CompanyName = textOf(n)
	}

	for _, title := range findAll(block, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, titleClass)
	}) {
		if n := findFirst(title, func(n *html.Node) bool {
			return n.DataAtom == atom.A && hasClass(n, detailClass)
		}); n != nil {
			c.DetailURL = attr(n, "href")
			break
		}
	}

	for _, dt := range findAll(block, func(n *html.Node) bool { return n.DataAtom == atom.Dt }) {
		if text := textOf(dt); strings.HasPrefix(text, addressPrefix) {
			c.Location = strings.TrimSpace(strings.ReplaceAll(text, addressPrefix, ""))
			break
		}
	}

	return c
}

// findAll returns the descendants of n matching pred in document order.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for d := range n.Descendants() {
		if d.Type == html.ElementNode && pred(d) {
			out = append(out, d)
		}
	}
	return out
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for d := range n.Descendants() {
		if d.Type == html.ElementNode && pred(d) {
			return d
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textOf concatenates the trimmed text nodes under n, dropping empty ones.
func textOf(n *html.Node) string {
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type != html.TextNode {
			continue
		}
		b.WriteString(strings.TrimSpace(d.Data))
	}
	return b.String()
}
