package fetcher

import (
	"context"
	"io"
	"net/url"

	"github.com/rotisserie/eris"
)

// Router is a Fetcher that picks a transport by URL scheme.
type Router struct {
	HTTP Fetcher
	FTP  Fetcher
}

// NewRouter returns a Router over the given transports. Either may be nil,
// in which case URLs of that scheme are rejected.
func NewRouter(httpFetcher, ftpFetcher Fetcher) *Router {
	return &Router{HTTP: httpFetcher, FTP: ftpFetcher}
}

// Download dispatches to the transport registered for rawURL's scheme.
func (r *Router) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "router: parse %q", rawURL)
	}

	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = r.HTTP
	case "ftp":
		f = r.FTP
	default:
		return nil, eris.Errorf("router: unsupported scheme %q in %s", u.Scheme, rawURL)
	}
	if f == nil {
		return nil, eris.Errorf("router: no fetcher configured for scheme %q", u.Scheme)
	}
	return f.Download(ctx, rawURL)
}
