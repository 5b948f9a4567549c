package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	appsession "github.com/husnain417/Steth-admin-Panel/internal/admin/session"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// User represents the authenticated staff member. Token is forwarded to the
// product API as the bearer credential.
type User struct {
	UID   string
	Email string
	Name  string
	Roles []string
	Token string
}

// Authenticator resolves an incoming bearer token into a User.
type Authenticator interface {
	Authenticate(r *http.Request, token string) (*User, error)
}

// ErrUnauthorized is returned when authentication fails.
var ErrUnauthorized = errors.New("unauthorized")

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingToken indicates an auth attempt without credentials.
	ReasonMissingToken = "missing_token"
	// ReasonTokenInvalid indicates a malformed or invalid token.
	ReasonTokenInvalid = "token_invalid"
	// ReasonTokenExpired indicates an expired token which may be recoverable.
	ReasonTokenExpired = "token_expired"
	// ReasonNotStaff indicates a valid token for an account without a staff role.
	ReasonNotStaff = "not_staff"
)

// TokenCookieName carries the staff token between the login form and later requests.
const TokenCookieName = "__session"

// DefaultAuthenticator accepts any non-empty bearer token and is intended for local development.
func DefaultAuthenticator() Authenticator {
	return &passthroughAuthenticator{}
}

// Auth resolves the staff token from the Authorization header or the
// sign-in cookie. Failures end the session and send the browser to
// loginPath; GET requests carry their URL along as next.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if authenticator == nil {
		authenticator = DefaultAuthenticator()
	}
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, reason, err := authenticate(authenticator, r)
			if err != nil {
				logger := observability.FromContext(r.Context())
				if reason == ReasonMissingToken {
					logger.Info("auth failure", zap.String("reason", reason))
				} else {
					logger.Warn("auth failure", zap.String("reason", reason), zap.Error(err))
					destroySession(r.Context())
				}
				handleUnauthorized(w, r, loginPath, reason)
				return
			}

			if sess, ok := SessionFromContext(r.Context()); ok {
				sess.SetUser(&appsession.User{UID: user.UID, Email: user.Email, Roles: user.Roles})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

func authenticate(authenticator Authenticator, r *http.Request) (*User, string, error) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if c, err := r.Cookie(TokenCookieName); err == nil {
			token = strings.TrimSpace(c.Value)
		}
	}
	if token == "" {
		return nil, ReasonMissingToken, ErrUnauthorized
	}

	user, err := authenticator.Authenticate(r, token)
	if err == nil && user != nil {
		return user, "", nil
	}
	reason := ReasonTokenInvalid
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Reason != "" {
		reason = authErr.Reason
	}
	if err == nil {
		err = ErrUnauthorized
	}
	return nil, reason, err
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

// UserID returns the authenticated user's UID, or empty.
func UserID(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok {
		return user.UID
	}
	return ""
}

func parseBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	if IsHTMXRequest(r.Context()) {
		if reason == ReasonTokenExpired {
			w.Header().Set("HX-Refresh", "true")
		} else {
			w.Header().Set("HX-Redirect", loginPath)
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	redirectURL := loginPath
	if u, err := url.Parse(loginPath); err == nil {
		q := u.Query()
		if reason == ReasonTokenExpired {
			q.Set("reason", "expired")
		}
		if r.Method == http.MethodGet {
			q.Set("next", r.URL.RequestURI())
		}
		u.RawQuery = q.Encode()
		redirectURL = u.String()
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func destroySession(ctx context.Context) {
	if sess, ok := SessionFromContext(ctx); ok {
		sess.Destroy()
	}
}

type passthroughAuthenticator struct{}

func (p *passthroughAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	return &User{
		UID:   token,
		Roles: []string{"admin"},
		Token: token,
	}, nil
}

// ContextWithUser attaches user to ctx. Used by tests and by handlers that
// render on behalf of a known user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
