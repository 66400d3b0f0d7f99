package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout is the per-request timeout used when none is configured.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the maximum number of response bytes read (10 MiB).
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// DefaultUserAgent identifies the load generator to the server.
	DefaultUserAgent = "circload/1.0"
)

// Authenticator produces the headers that authenticate a request.
type Authenticator interface {
	// Headers returns the authentication headers. Callers may modify the
	// returned value.
	Headers() http.Header
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// URL is the final request URL after redirects.
	URL string
}

// ContentType returns the media type of the response without parameters,
// lowercased. It returns an empty string when the header is missing.
func (r *Response) ContentType() string {
	raw := r.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

// Session is the HTTP identity of one virtual user.
// Get, Post, Put and Do are safe for concurrent use. SetAuthenticator is not:
// call it before the session is shared between goroutines.
type Session struct {
	id          string
	client      *http.Client
	baseURL     *url.URL
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
	auth        Authenticator
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	id          string
	client      *http.Client
	baseURL     string
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// WithBaseURL sets the URL relative references are resolved against.
func WithBaseURL(rawURL string) Option {
	return func(o *sessionOptions) {
		o.baseURL = rawURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *sessionOptions) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *sessionOptions) {
		o.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of response bytes read.
func WithMaxBodySize(size int64) Option {
	return func(o *sessionOptions) {
		o.maxBodySize = size
	}
}

// WithLogger sets the logger for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client. The client is used as is: no
// cookie jar or User-Agent injection is added.
func WithHTTPClient(client *http.Client) Option {
	return func(o *sessionOptions) {
		o.client = client
	}
}

// WithID sets the session identifier. A random UUID is used by default.
func WithID(id string) Option {
	return func(o *sessionOptions) {
		o.id = id
	}
}

// New creates a Session.
func New(opts ...Option) (*Session, error) {
	o := &sessionOptions{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(o)
	}

	s := &Session{
		id:          o.id,
		client:      o.client,
		timeout:     o.timeout,
		userAgent:   o.userAgent,
		maxBodySize: o.maxBodySize,
		logger:      o.logger,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.id)

	if o.baseURL != "" {
		u, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, o.baseURL)
		}
		s.baseURL = u
	}

	if s.client == nil {
		client, err := newHTTPClient(s.timeout, s.userAgent)
		if err != nil {
			return nil, err
		}
		s.client = client
	}

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// BaseURL returns the base URL, or an empty string when none is configured.
func (s *Session) BaseURL() string {
	if s.baseURL == nil {
		return ""
	}
	return s.baseURL.String()
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// SetAuthenticator attaches credentials to the session.
func (s *Session) SetAuthenticator(auth Authenticator) {
	s.auth = auth
}

// Authenticated reports whether credentials are attached.
func (s *Session) Authenticated() bool {
	return s.auth != nil
}

// AuthHeaders returns a copy of the authentication headers.
func (s *Session) AuthHeaders() (http.Header, error) {
	if s.auth == nil {
		return nil, ErrNotAuthenticated
	}
	return s.auth.Headers(), nil
}

// ResolveURL resolves ref against the base URL.
// Absolute references and sessions without a base URL return ref unchanged.
func (s *Session) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	if u.IsAbs() || s.baseURL == nil {
		return u.String(), nil
	}
	return s.baseURL.ResolveReference(u).String(), nil
}

// Get performs a GET request.
func (s *Session) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return s.Do(ctx, http.MethodGet, rawURL, nil, header)
}

// Post performs a POST request with the given body.
func (s *Session) Post(ctx context.Context, rawURL string, body []byte, header http.Header) (*Response, error) {
	return s.Do(ctx, http.MethodPost, rawURL, body, header)
}

// Put performs a PUT request with the given body.
func (s *Session) Put(ctx context.Context, rawURL string, body []byte, header http.Header) (*Response, error) {
	return s.Do(ctx, http.MethodPut, rawURL, body, header)
}

// Do performs a request and reads the whole response body.
// A 4xx or 5xx status returns the response together with an *HTTPStatusError.
func (s *Session) Do(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*Response, error) {
	target, err := s.ResolveURL(rawURL)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body of %s %s: %w", method, target, err)
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		URL:        resp.Request.URL.String(),
	}

	s.logger.Debug("request completed",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return result, &HTTPStatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}
	return result, nil
}
