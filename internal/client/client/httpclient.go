package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
	"github.com/dmitrijs2005/sentineliq/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// refreshSkew is how close to its expiry an access token may get before a
// request refreshes it first.
const refreshSkew = 30 * time.Second

// HTTPClient talks to the SentinelIQ API over HTTP with cookie based sessions.
type HTTPClient struct {
	base *url.URL
	http *http.Client
	jar  http.CookieJar
	log  logging.Logger
	now  func() time.Time

	refreshMu sync.Mutex

	mu             sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

// NewHTTPClient builds a client for serverURL. A zero timeout disables the
// per-request deadline.
func NewHTTPClient(serverURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", serverURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if log == nil {
		log = logging.NewNop()
	}

	return &HTTPClient{
		base: base,
		jar:  jar,
		http: &http.Client{Jar: jar, Timeout: timeout},
		log:  log,
		now:  time.Now,
	}, nil
}

// OnUnauthorized registers fn to be called when an endpoint other than the
// auth endpoints answers 401 and a token refresh did not recover the session.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) *url.URL {
	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return &u
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	// authCall marks the auth endpoints, whose 401s are answers rather than
	// an expired session.
	authCall bool
}

// do sends cl. A 401 from a data endpoint is answered by one token refresh
// and one retry; the unauthorized hook fires only when that does not help.
func (c *HTTPClient) do(ctx context.Context, cl call) error {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", cl.path, err)
		}
		payload = b
	}

	if !cl.authCall && c.refreshDue() {
		if err := c.Refresh(ctx); err != nil {
			c.log.Debug(ctx, "token refresh failed", "err", err)
		}
	}

	status, err := c.send(ctx, cl, payload)
	if status != http.StatusUnauthorized || cl.authCall {
		return err
	}
	if c.cookie(common.RefreshTokenCookieName) != "" {
		if rerr := c.Refresh(ctx); rerr == nil {
			status, err = c.send(ctx, cl, payload)
			if status != http.StatusUnauthorized {
				return err
			}
		} else {
			c.log.Debug(ctx, "token refresh failed", "err", rerr)
		}
	}
	c.notifyUnauthorized(ctx)
	return err
}

// send performs a single round trip. The returned status is zero when no
// response arrived.
func (c *HTTPClient) send(ctx context.Context, cl call, payload []byte) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path, cl.query).String(), body)
	if err != nil {
		return 0, fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("method", cl.method, "path", cl.path, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "err", err)
		return 0, fmt.Errorf("%s %s: %w: %w", cl.method, cl.path, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := mapStatus(resp.StatusCode, readMessage(resp.Body))
		return resp.StatusCode, fmt.Errorf("%s %s: %w", cl.method, cl.path, apiErr)
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("decode %s: %w", cl.path, err)
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) notifyUnauthorized(ctx context.Context) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

// cookie returns the value of the named session cookie, or "".
func (c *HTTPClient) cookie(name string) string {
	for _, ck := range c.jar.Cookies(c.endpoint("/api/", nil)) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// refreshDue reports whether a refresh token is held and the access token is
// gone or about to expire.
func (c *HTTPClient) refreshDue() bool {
	if c.cookie(common.RefreshTokenCookieName) == "" {
		return false
	}
	access := c.cookie(common.AccessTokenCookieName)
	if access == "" {
		return true
	}
	info, err := AccessTokenClaims(access)
	if err != nil || info.ExpiresAt.IsZero() {
		return false
	}
	return !c.now().Add(refreshSkew).Before(info.ExpiresAt)
}

// Refresh exchanges the refresh token cookie for a new access token cookie.
// Concurrent callers refresh one at a time.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	token := c.cookie(common.RefreshTokenCookieName)
	if token == "" {
		return fmt.Errorf("refresh: %w", common.ErrAuthRequired)
	}
	payload, err := json.Marshal(struct {
		RefreshToken string `json:"refreshToken"`
	}{token})
	if err != nil {
		return fmt.Errorf("encode refresh: %w", err)
	}
	_, err = c.send(ctx, call{method: http.MethodPost, path: "/api/auth/refresh", authCall: true}, payload)
	return err
}

func (c *HTTPClient) Check(ctx context.Context) (*SessionInfo, error) {
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/auth/check", authCall: true}); err != nil {
		return nil, err
	}
	return c.sessionInfo(ctx), nil
}

// sessionInfo reads the access token cookie from the jar.
func (c *HTTPClient) sessionInfo(ctx context.Context) *SessionInfo {
	token := c.cookie(common.AccessTokenCookieName)
	if token == "" {
		return nil
	}
	info, err := AccessTokenClaims(token)
	if err != nil {
		c.log.Debug(ctx, "access token not readable", "err", err)
		return nil
	}
	return info
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/auth/login", body: creds, authCall: true})
}

func (c *HTTPClient) Signup(ctx context.Context, form models.SignupForm) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/signup", body: form, out: &out, authCall: true})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Logout ends the server session. The local token cookies are expired even
// when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/logout", authCall: true})
	c.jar.SetCookies(c.endpoint("/", nil), []*http.Cookie{
		{Name: common.AccessTokenCookieName, Path: "/", MaxAge: -1},
		{Name: common.RefreshTokenCookieName, Path: "/", MaxAge: -1},
	})
	return err
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/me", out: &p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func providerSegment(provider string) string {
	return url.PathEscape(strings.ToLower(provider))
}

func (c *HTTPClient) Messages(ctx context.Context, provider, inboxID string) ([]models.MessageSummary, error) {
	var out []models.MessageSummary
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/" + providerSegment(provider) + "/emails",
		query:  url.Values{"inboxId": []string{inboxID}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.MessageSummary{}
	}
	return out, nil
}

func (c *HTTPClient) MessageDetail(ctx context.Context, provider string, id models.MessageID) (*models.MessageDetail, error) {
	var d models.MessageDetail
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/" + providerSegment(provider) + "/emails/" + url.PathEscape(id.String()),
		out:    &d,
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) Prompt(ctx context.Context, prompt, emailBody string) (string, error) {
	in := struct {
		Prompt    string `json:"prompt"`
		EmailBody string `json:"emailBody"`
	}{prompt, emailBody}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/ai/prompt", body: in, out: &out}); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// LinkURL is the address the user opens in a browser to link a provider
// account.
func (c *HTTPClient) LinkURL(provider string) string {
	return c.endpoint("/auth/"+providerSegment(provider), nil).String()
}
