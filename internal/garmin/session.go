package garmin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const maxPageBytes = 2 << 20

var (
	csrfPattern   = regexp.MustCompile(`name="_csrf"\s+value="([^"]+)"`)
	ticketPattern = regexp.MustCompile(`ticket=([^"&'\s]+)`)
	lockedPattern = regexp.MustCompile(`(?i)account[^<]{0,40}locked`)
)

// Session is one authenticated Garmin Connect account. It is not safe for
// concurrent use; callers create one per request.
type Session struct {
	client      *Client
	email       string
	password    string
	http        *http.Client
	displayName string
	loggedIn    bool
}

// DisplayName returns the account display name learned during Login.
func (s *Session) DisplayName() string {
	return s.displayName
}

// Login performs the SSO credential exchange and establishes Connect cookies.
// Rejected credentials are reported as *AuthenticationError.
func (s *Session) Login(ctx context.Context) error {
	outcome := "failure"
	defer func() { s.client.metrics.IncrementLogins(outcome) }()

	service := s.client.connectURL + "/modern"
	signinURL := s.client.ssoURL + "/sso/signin?" + url.Values{"service": {service}}.Encode()

	page, err := s.fetchPage(ctx, http.MethodGet, signinURL, nil, "sso_signin_page")
	if err != nil {
		return err
	}
	if page.status != http.StatusOK {
		return fmt.Errorf("sso signin page: http %d", page.status)
	}
	var csrf string
	if m := csrfPattern.FindStringSubmatch(page.body); m != nil {
		csrf = m[1]
	}

	form := url.Values{
		"username": {s.email},
		"password": {s.password},
		"embed":    {"false"},
		"_csrf":    {csrf},
	}
	resp, err := s.fetchPage(ctx, http.MethodPost, signinURL, form, "sso_signin")
	if err != nil {
		return err
	}
	switch {
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		outcome = "auth_failure"
		return &AuthenticationError{StatusCode: resp.status, Reason: fmt.Sprintf("sso rejected credentials (http %d)", resp.status)}
	case resp.status == http.StatusTooManyRequests:
		return fmt.Errorf("sso signin: too many requests")
	case resp.status >= 400:
		return fmt.Errorf("sso signin: http %d", resp.status)
	}

	ticket := extractTicket(resp)
	if ticket == "" {
		outcome = "auth_failure"
		reason := "invalid email or password"
		if lockedPattern.MatchString(resp.body) {
			reason = "account locked"
		}
		return &AuthenticationError{StatusCode: resp.status, Reason: reason}
	}

	exchange, err := s.fetchPage(ctx, http.MethodGet, service+"/?"+url.Values{"ticket": {ticket}}.Encode(), nil, "ticket_exchange")
	if err != nil {
		return err
	}
	if exchange.status >= 400 {
		return fmt.Errorf("ticket exchange: http %d", exchange.status)
	}

	s.loggedIn = true
	profile, err := s.get(ctx, "social_profile", "/userprofile-service/socialProfile", nil)
	if err != nil {
		s.loggedIn = false
		return fmt.Errorf("load profile: %w", err)
	}
	s.displayName = profile.String("displayName")
	if s.displayName == "" {
		s.loggedIn = false
		return fmt.Errorf("load profile: display name missing")
	}

	outcome = "success"
	s.client.logger.Debug("garmin login succeeded", zap.String("display_name", s.displayName))
	return nil
}

type page struct {
	status   int
	body     string
	location string
}

// fetchPage issues an SSO request without following redirects so the service
// ticket can be read from either the body or the Location header.
func (s *Session) fetchPage(ctx context.Context, method, target string, form url.Values, call string) (*page, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", call, err)
	}
	req.Header.Set("User-Agent", s.client.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", target)
	}

	noRedirect := *s.http
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		s.client.metrics.IncrementUpstreamRequests(call, "error")
		return nil, fmt.Errorf("%s: %w", call, err)
	}
	defer s.closeBody(resp)
	s.client.metrics.IncrementUpstreamRequests(call, statusClass(resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", call, err)
	}
	return &page{status: resp.StatusCode, body: string(raw), location: resp.Header.Get("Location")}, nil
}

func extractTicket(p *page) string {
	for _, src := range []string{p.location, p.body} {
		if m := ticketPattern.FindStringSubmatch(src); m != nil {
			return m[1]
		}
	}
	return ""
}

// get fetches a Connect proxy endpoint. A 204 or an empty body yields an empty Payload.
func (s *Session) get(ctx context.Context, call, path string, query url.Values) (Payload, error) {
	if !s.loggedIn {
		return Payload{}, ErrNotLoggedIn
	}
	target := s.client.connectURL + "/modern/proxy" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%s: create request: %w", call, err)
	}
	req.Header.Set("User-Agent", s.client.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("NK", "NT")

	resp, err := s.http.Do(req)
	if err != nil {
		s.client.metrics.IncrementUpstreamRequests(call, "error")
		return Payload{}, fmt.Errorf("%s: %w", call, err)
	}
	defer s.closeBody(resp)
	s.client.metrics.IncrementUpstreamRequests(call, statusClass(resp.StatusCode))

	if resp.StatusCode == http.StatusNoContent {
		return Payload{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Payload{}, fmt.Errorf("%s: http %d: %s", call, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	p, err := DecodePayload(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Payload{}, fmt.Errorf("%s: %w", call, err)
	}
	return p, nil
}

func (s *Session) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		s.client.logger.Warn("failed to close response body", zap.Error(err))
	}
}
