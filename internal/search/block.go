package search

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrBlocked is returned when the directory served an anti-bot page instead
// of search results.
var ErrBlocked = eris.New("search: directory blocked the request")

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone    BlockType = ""
	BlockCaptcha BlockType = "captcha"
	BlockJSShell BlockType = "js_shell"
)

// DetectBlock checks a page that yielded no results for signs of anti-bot
// protection. A genuine empty result page is BlockNone.
func DetectBlock(page string) BlockType {
	lower := strings.ToLower(page)

	if strings.Contains(lower, "captcha") ||
		strings.Contains(lower, "checking your browser") {
		return BlockCaptcha
	}

	// Script-only shell: tiny body asking for JavaScript or redirecting.
	if len(page) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return BlockJSShell
		}
	}

	return BlockNone
}
