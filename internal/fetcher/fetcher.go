// Package fetcher retrieves directory pages over HTTP and reads query tables
// from CSV and XLSX files.
package fetcher

import "context"

// PageFetcher downloads a page and returns its body decoded to UTF-8.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
