package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
)

var (
	// ErrTokenExpired marks an expired ID token.
	ErrTokenExpired = errors.New("firebase token expired")
	// ErrNotStaff marks a valid ID token whose claims carry no staff role.
	ErrNotStaff = errors.New("account has no staff role")
)

// FirebaseTokenVerifier is the part of the Firebase auth client the admin uses.
type FirebaseTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseAuthenticator accepts Firebase ID tokens issued to staff. Roles
// come from the "role" and "roles" claims; an "admin": true claim adds the
// admin role. Tokens without a staff role are refused.
type FirebaseAuthenticator struct {
	verifier FirebaseTokenVerifier
}

// NewFirebaseAuthenticator wraps verifier.
func NewFirebaseAuthenticator(verifier FirebaseTokenVerifier) *FirebaseAuthenticator {
	if verifier == nil {
		panic("firebase token verifier is required")
	}
	return &FirebaseAuthenticator{verifier: verifier}
}

// Authenticate verifies token and maps its claims onto a staff User. The raw
// token is kept so product API calls can forward it.
func (f *FirebaseAuthenticator) Authenticate(r *http.Request, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}

	verified, err := f.verifier.VerifyIDToken(r.Context(), token)
	if err != nil {
		if firebaseauth.IsIDTokenExpired(err) || errors.Is(err, ErrTokenExpired) {
			return nil, NewAuthError(ReasonTokenExpired, err)
		}
		return nil, NewAuthError(ReasonTokenInvalid, err)
	}

	c := claims(verified.Claims)
	raw := slices.Concat(c.list("role"), c.list("roles"))
	if admin, _ := c["admin"].(bool); admin {
		raw = append(raw, string(rbac.RoleAdmin))
	}
	roles := rbac.ParseRoles(raw)
	if len(roles) == 0 {
		return nil, NewAuthError(ReasonNotStaff, ErrNotStaff)
	}

	user := &User{
		UID:   verified.UID,
		Email: c.text("email"),
		Name:  c.text("name"),
		Token: token,
	}
	for _, role := range roles {
		user.Roles = append(user.Roles, string(role))
	}
	return user, nil
}

type claims map[string]any

func (c claims) text(key string) string {
	s, _ := c[key].(string)
	return strings.TrimSpace(s)
}

// list reads a claim holding either one role or a list of them.
func (c claims) list(key string) []string {
	switch v := c[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
