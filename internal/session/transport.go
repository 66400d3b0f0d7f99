package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// maxRedirects limits how many redirects a single request follows.
const maxRedirects = 10

// newHTTPClient builds the client owned by one session.
//
// Design decisions:
//   - Each session gets its own cookie jar so virtual users never share
//     server-side state
//   - The jar uses the public suffix list so cookies are scoped like a browser
//   - Redirects are capped to prevent loops
func newHTTPClient(timeout time.Duration, userAgent string) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	headers := map[string]string{}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:    transport,
			headers: headers,
		},
		Timeout: timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// headerInjectingTransport wraps an http.RoundTripper to add fixed headers
// to every request, including those issued while following redirects.
// Headers already present on the request are left alone.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		if clone.Header.Get(key) == "" {
			clone.Header.Set(key, value)
		}
	}
	return t.base.RoundTrip(clone)
}
