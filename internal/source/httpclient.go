package source

import (
	"net/http"
	"net/url"
	"time"
)

// newHTTPClient builds the per-adapter HTTP client with optional proxy
// support. Every adapter enforces its own timeout so no fetch can block a
// run indefinitely.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
