// Package fetcher retrieves remote resources over HTTP and FTP and unpacks
// ZIP and delimited-text payloads.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL in a single attempt and returns the body.
	// The caller must close it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
