package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/drafts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/session"
)

// SessionHashKey signs session cookies issued by test servers.
var SessionHashKey = []byte("0123456789abcdef0123456789abcdef")

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator overrides the authenticator used by the admin server.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithProductsService wires a custom product backend.
func WithProductsService(service products.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Products = service
	}
}

// WithDraftStore overrides where drafts are kept.
func WithDraftStore(store drafts.Store) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Drafts = store
	}
}

// WithStager overrides the image stager.
func WithStager(stager *media.Stager) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Stager = stager
	}
}

// WithCatalog overrides the option catalog.
func WithCatalog(cat catalog.Catalog) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = &cat
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		HashKey:    SessionHashKey,
		CookiePath: "/",
	})
	require.NoError(t, err)

	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/admin",
		Environment:    "Test",
		CSRFCookieName: "csrf_token",
		CSRFCookiePath: "/",
		CSRFHeaderName: "X-CSRF-Token",
		Authenticator:  middleware.DefaultAuthenticator(),
		Sessions:       sessions,
		Products:       products.NewStaticService(),
		Drafts:         drafts.NewMemoryStore(0),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Client drives a test server like a browser: it keeps cookies, does not
// follow redirects and signs every request with a bearer token. Copies made
// with HTMX share cookies and the CSRF token, and may be used concurrently.
type Client struct {
	t       testing.TB
	base    string
	token   string
	http    *http.Client
	csrf    *csrfToken
	headers http.Header
}

type csrfToken struct {
	mu    sync.Mutex
	value string
}

func (c *csrfToken) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *csrfToken) set(v string) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

// NewClient returns a Client for ts authenticating with token.
func NewClient(t testing.TB, ts *httptest.Server, token string) *Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Client{
		t:     t,
		base:  ts.URL,
		token: token,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		csrf:    &csrfToken{},
		headers: http.Header{},
	}
}

// HTMX returns a copy of the client that marks its requests as htmx requests.
func (c *Client) HTMX() *Client {
	clone := *c
	clone.headers = c.headers.Clone()
	clone.headers.Set("HX-Request", "true")
	return &clone
}

// Get issues a GET and remembers the CSRF token the server hands out.
func (c *Client) Get(path string) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

// PostForm submits form values with the CSRF token attached as a form field.
func (c *Client) PostForm(path string, values url.Values) *http.Response {
	c.t.Helper()

	if values == nil {
		values = url.Values{}
	}
	values.Set(middleware.CSRFFieldName, c.CSRFToken())
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(values.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// Post submits a prepared body, sending the CSRF token as a header.
func (c *Client) Post(path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.base+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-CSRF-Token", c.CSRFToken())
	return c.do(req)
}

// CSRFToken returns the token from the cookie jar, fetching a page first
// when none has been issued yet.
func (c *Client) CSRFToken() string {
	c.t.Helper()

	if c.csrf.get() == "" {
		resp := c.Get("/admin/login")
		resp.Body.Close()
	}
	token := c.csrf.get()
	require.NotEmpty(c.t, token, "server did not issue a csrf token")
	return token
}

func (c *Client) do(req *http.Request) *http.Response {
	c.t.Helper()

	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })

	if u, err := url.Parse(c.base); err == nil {
		for _, cookie := range c.http.Jar.Cookies(u) {
			if cookie.Name == "csrf_token" {
				c.csrf.set(cookie.Value)
			}
		}
	}
	return resp
}
