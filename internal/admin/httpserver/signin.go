package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	appsession "github.com/husnain417/Steth-admin-Panel/internal/admin/session"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/auth"
)

// signIn exchanges a staff ID token for a session and ends it on logout.
// Ending the session runs the session hooks, which drop the staff member's
// drafts and staged images.
type signIn struct {
	authenticator custommw.Authenticator
	home          string
	loginPath     string
	secure        bool
}

func newSignIn(authenticator custommw.Authenticator, basePath, loginPath string, secure bool) *signIn {
	if authenticator == nil {
		panic("httpserver: authenticator is required")
	}
	return &signIn{
		authenticator: authenticator,
		home:          basePath,
		loginPath:     loginPath,
		secure:        secure,
	}
}

// Form renders the sign-in page, or sends an already signed-in staff member
// back to where they were going.
func (s *signIn) Form(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess.User() != nil {
		http.Redirect(w, r, s.landing(next), http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, auth.LoginPageData{
		Message: noticeFor(r.URL.Query()),
		Next:    s.returnPath(next),
	})
}

// Submit verifies the pasted token and records the staff member on the session.
func (s *signIn) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, auth.LoginPageData{Error: "The form could not be read. Please try again."})
		return
	}
	next := s.returnPath(r.PostFormValue("next"))
	token := strings.TrimSpace(r.PostFormValue("id_token"))
	if token == "" {
		s.render(w, r, http.StatusBadRequest, auth.LoginPageData{Error: "Paste your ID token to sign in.", Next: next})
		return
	}

	user, err := s.authenticator.Authenticate(r, token)
	if err != nil || user == nil {
		observability.FromContext(r.Context()).Warn("staff sign-in rejected", zap.Error(err))
		s.render(w, r, http.StatusUnauthorized, auth.LoginPageData{Error: rejection(err), Next: next})
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetUser(&appsession.User{UID: user.UID, Email: user.Email, Roles: user.Roles})
	}
	if user.Token != "" {
		token = user.Token
	}
	http.SetCookie(w, s.tokenCookie(token, r.TLS != nil))
	observability.FromContext(r.Context()).Info("staff signed in", zap.String("uid", user.UID))
	custommw.Redirect(w, r, s.landing(next))
}

// Logout ends the session and clears the token cookie.
func (s *signIn) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.Destroy()
	}
	cookie := s.tokenCookie("", false)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
	custommw.Redirect(w, r, s.loginPath+"?status=logged_out")
}

func (s *signIn) render(w http.ResponseWriter, r *http.Request, status int, data auth.LoginPageData) {
	data.LoginPath = s.loginPath
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	templ.Handler(auth.LoginPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (s *signIn) tokenCookie(value string, tls bool) *http.Cookie {
	return &http.Cookie{
		Name:     custommw.TokenCookieName,
		Value:    value,
		Path:     s.home,
		HttpOnly: true,
		Secure:   s.secure || tls,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *signIn) landing(next string) string {
	if target := s.returnPath(next); target != "" {
		return target
	}
	return s.home
}

// returnPath keeps next only when it is a local path under the admin base
// that is not the sign-in page itself.
func (s *signIn) returnPath(raw string) string {
	target := localPath(s.home, raw)
	if target == "" {
		return ""
	}
	if u, err := url.Parse(target); err == nil && path.Clean(u.Path) == path.Clean(s.loginPath) {
		return ""
	}
	return target
}

func localPath(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "\\") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return ""
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return ""
	}
	p = path.Clean(p)
	if base != "/" && p != base && !strings.HasPrefix(p, base+"/") {
		return ""
	}
	u.Path, u.RawPath = p, ""
	return u.String()
}

func rejection(err error) string {
	var authErr *custommw.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Reason {
		case custommw.ReasonTokenExpired:
			return "That token has expired. Paste a fresh one to sign in."
		case custommw.ReasonNotStaff:
			return "That account has no staff role for the product screens."
		}
	}
	return "That token was not accepted. Check it and try again."
}

func noticeFor(q url.Values) string {
	if q.Get("status") == "logged_out" {
		return "You have been signed out. Unsaved product drafts were discarded."
	}
	switch q.Get("reason") {
	case "expired", custommw.ReasonTokenExpired:
		return "Your session has expired. Please sign in again."
	case custommw.ReasonTokenInvalid:
		return "Your sign-in is no longer valid. Please sign in again."
	case custommw.ReasonMissingToken:
		return "Please sign in to continue."
	}
	return ""
}
