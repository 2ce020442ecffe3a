package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration
	// RequestsPerSecond is the per-host politeness rate. Zero disables
	// limiting.
	RequestsPerSecond float64
	// Progress draws a byte progress bar on stderr when the size is known.
	Progress bool
}

// HTTPFetcher implements Fetcher using net/http. Requests are made exactly
// once; failures are returned to the caller.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = "world-cities/1.0"
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the limiter for the URL's host, creating one at the
// default rate on first use. Nil means unlimited.
func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	if f.opts.RequestsPerSecond <= 0 {
		return nil
	}
	lim := rate.NewLimiter(rate.Limit(f.opts.RequestsPerSecond), 1)
	f.limiters[u.Host] = lim
	return lim
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "download: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	if lim := f.limiterFor(rawURL); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "download: rate limiter wait")
		}
	}

	zap.L().Debug("http: GET", zap.String("url", rawURL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "download: request %s", rawURL)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	if f.opts.Progress && resp.ContentLength > 0 {
		bar := pb.Full.Start64(resp.ContentLength)
		bar.Set(pb.Bytes, true)
		bar.Set(pb.CleanOnFinish, true)
		// Closing the proxy finishes the bar and closes the body.
		return bar.NewProxyReader(resp.Body), nil
	}

	return resp.Body, nil
}
