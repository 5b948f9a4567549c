package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
)

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf.token"

// CSRFFieldName is the hidden form field carrying the token on plain form
// posts, including the multipart image forms.
const CSRFFieldName = "csrf_token"

const csrfTokenTTL = 24 * time.Hour

// CSRFConfig names the double-submit cookie and the header htmx sends it back in.
type CSRFConfig struct {
	CookieName string
	CookiePath string
	HeaderName string
	Secure     bool
}

type csrfGuard struct {
	cookie string
	path   string
	header string
	secure bool
}

// CSRF guards every composer and image event with a double-submit cookie.
// Reads get a token issued; writes must echo it in the header (htmx) or the
// csrf_token field (plain forms).
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	g := csrfGuard{
		cookie: firstNonBlank(cfg.CookieName, "admin_csrf"),
		path:   firstNonBlank(cfg.CookiePath, "/"),
		header: firstNonBlank(cfg.HeaderName, "X-CSRF-Token"),
		secure: cfg.Secure,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := g.token(w, r)
			if err != nil {
				observability.FromContext(r.Context()).Error("csrf token", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if mutates(r.Method) && !g.echoed(r, token) {
				observability.FromContext(r.Context()).Warn("csrf token mismatch", zap.String("path", r.URL.Path))
				http.Error(w, "This form has expired. Reload the page and try again.", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfTokenContextKey, token)))
		})
	}
}

// CSRFTokenFromContext returns the token to embed in forms rendered for this request.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenContextKey).(string)
	return token
}

func (g csrfGuard) token(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(g.cookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookie,
		Value:    token,
		Path:     g.path,
		HttpOnly: true,
		Secure:   g.secure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenTTL.Seconds()),
	})
	return token, nil
}

func (g csrfGuard) echoed(r *http.Request, token string) bool {
	sent := r.Header.Get(g.header)
	if sent == "" {
		sent = r.PostFormValue(CSRFFieldName)
	}
	return sent != "" && subtle.ConstantTimeCompare([]byte(sent), []byte(token)) == 1
}

func mutates(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}

func firstNonBlank(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
