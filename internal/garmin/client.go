package garmin

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/patrickwarner/garminsync/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Config configures a Client.
type Config struct {
	SSOURL     string
	ConnectURL string
	Timeout    time.Duration
	UserAgent  string
}

// Client provides access to Garmin Connect. It holds no per-account state;
// every login goes through a Session created by NewSession.
type Client struct {
	ssoURL     string
	connectURL string
	timeout    time.Duration
	userAgent  string
	transport  http.RoundTripper
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// NewClient validates cfg and creates a Garmin Connect client.
func NewClient(cfg Config, logger *zap.Logger, metrics observability.MetricsRegistry) (*Client, error) {
	sso, err := baseURL(cfg.SSOURL)
	if err != nil {
		return nil, fmt.Errorf("sso url: %w", err)
	}
	connect, err := baseURL(cfg.ConnectURL)
	if err != nil {
		return nil, fmt.Errorf("connect url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0"
	}

	return &Client{
		ssoURL:     sso,
		connectURL: connect,
		timeout:    cfg.Timeout,
		userAgent:  ua,
		transport:  otelhttp.NewTransport(http.DefaultTransport),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// NewSession returns an unauthenticated session for one account. Sessions
// do not share cookies, so concurrent sessions for different accounts are safe.
func (c *Client) NewSession(email, password string) *Session {
	// cookiejar.New only fails on a broken PublicSuffixList, and nil is valid.
	jar, _ := cookiejar.New(nil)
	return &Session{
		client:   c,
		email:    email,
		password: password,
		http: &http.Client{
			Timeout:   c.timeout,
			Transport: c.transport,
			Jar:       jar,
		},
	}
}

// SetTransport replaces the outbound round tripper (for testing).
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.transport = rt
}

func baseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
