package search

import (
	"context"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orglink/internal/fetcher"
	"github.com/sells-group/orglink/internal/model"
)

// Source looks up candidates on the directory. Results are cached per search
// URL so repeated names in one input cost a single request.
type Source struct {
	pages fetcher.PageFetcher
	base  string
	cache *lru.Cache[string, []model.Candidate]
}

// NewSource creates a Source for the directory at base. cacheSize <= 0
// disables caching.
func NewSource(pages fetcher.PageFetcher, base string, cacheSize int) (*Source, error) {
	if strings.TrimSpace(base) == "" {
		return nil, eris.New("search: base url is required")
	}
	s := &Source{pages: pages, base: base}
	if cacheSize > 0 {
		cache, err := lru.New[string, []model.Candidate](cacheSize)
		if err != nil {
			return nil, eris.Wrap(err, "search: create cache")
		}
		s.cache = cache
	}
	return s, nil
}

// SearchURL returns the directory URL searched for name.
func (s *Source) SearchURL(name string) string {
	return URL(s.base, Term(name))
}

// DetailURL resolves a candidate's detail link against the directory base.
func (s *Source) DetailURL(href string) string {
	return DetailURL(s.base, href)
}

// Search fetches and parses the result page for name. An empty page is a
// valid empty result unless it looks like an anti-bot block.
func (s *Source) Search(ctx context.Context, name string) ([]model.Candidate, error) {
	u := s.SearchURL(name)
	if s.cache != nil {
		if hit, ok := s.cache.Get(u); ok {
			zap.L().Debug("search: cache hit", zap.String("url", u))
			return slices.Clone(hit), nil
		}
	}

	page, err := s.pages.Fetch(ctx, u)
	if err != nil {
		return nil, eris.Wrap(err, "search: fetch results")
	}

	candidates, err := ParseResults(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		if block := DetectBlock(page); block != BlockNone {
			return nil, eris.Wrapf(ErrBlocked, "%s page at %s", block, u)
		}
	}

	if s.cache != nil {
		s.cache.Add(u, slices.Clone(candidates))
	}
	return candidates, nil
}
