package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultRateLimit is requests per second per fetcher.
	DefaultRateLimit = 5
)

// httpSource is the HTTP plumbing shared by the remote fetchers.
type httpSource struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	proxy     string
	timeout   time.Duration
}

// Option configures a remote fetcher.
type Option func(*httpSource)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *httpSource) { s.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client; proxy and timeout options are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(s *httpSource) { s.client = c }
}

// WithRateLimit sets requests per second. Zero or less disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(s *httpSource) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithProxy routes requests through an HTTP(S) proxy.
func WithProxy(proxyURL string) Option {
	return func(s *httpSource) { s.proxy = proxyURL }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *httpSource) { s.timeout = d }
}

func newHTTPSource(baseURL string, opts ...Option) httpSource {
	s := httpSource{
		baseURL:   baseURL,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		userAgent: "Mozilla/5.0",
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.client == nil {
		s.client = newHTTPClient(s.proxy, s.timeout)
	}
	return s
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	jar, _ := cookiejar.New(nil)
	return &http.Client{Timeout: timeout, Transport: transport, Jar: jar}
}

// statusError is a non-200 answer.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

// get waits on the limiter, performs the request and returns the body.
func (s *httpSource) get(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 256 {
			body = body[:256]
		}
		return body, &statusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
