package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName  = "admin_session"
	defaultCookiePath  = "/"
	defaultLifetime    = 12 * time.Hour
	defaultIdleTimeout = 30 * time.Minute
	idLength           = 32
)

var (
	// ErrExpired indicates the stored session is no longer valid due to idle or absolute expiry.
	ErrExpired = errors.New("session expired")
	// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
	ErrInvalidConfig = errors.New("session: invalid config")
)

// ExpiredError carries the state of an expired session so callers can
// discard what was kept for it.
type ExpiredError struct {
	Data Data
}

// Error implements the error interface.
func (e *ExpiredError) Error() string {
	return ErrExpired.Error()
}

// Unwrap returns ErrExpired.
func (e *ExpiredError) Unwrap() error {
	return ErrExpired
}

// User is the signed-in staff member.
type User struct {
	UID   string   `json:"uid"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Data is what the cookie carries. It stays small and fixed in size:
// drafts and staged images live server-side, keyed by ID.
type Data struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty"`
	User       *User     `json:"user,omitempty"`
	Flash      *Flash    `json:"flash,omitempty"`
}

// Config controls cookie encoding and lifecycle limits.
type Config struct {
	CookieName     string
	HashKey        []byte
	BlockKey       []byte
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieHTTPOnly *bool
	CookieSameSite http.SameSite

	IdleTimeout time.Duration
	Lifetime    time.Duration
	Now         func() time.Time
}

// Manager keeps sessions in signed (and optionally encrypted) cookies.
type Manager struct {
	cfg      Config
	codec    *securecookie.SecureCookie
	httpOnly bool
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})

	httpOnly := true
	if cfg.CookieHTTPOnly != nil {
		httpOnly = *cfg.CookieHTTPOnly
	}
	return &Manager{cfg: cfg, codec: codec, httpOnly: httpOnly}, nil
}

// Load decodes the request's session. A missing or tampered cookie yields a
// fresh session; an expired one yields an *ExpiredError.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New(), nil
	}
	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil || stored.ID == "" {
		return m.New(), nil
	}
	if m.expired(stored, m.cfg.Now().UTC()) {
		return nil, &ExpiredError{Data: stored}
	}
	return &Session{data: stored}, nil
}

// New returns a fresh session that will be written on the next Save.
func (m *Manager) New() *Session {
	now := m.cfg.Now().UTC()
	return &Session{
		data: Data{
			ID:         mustGenerateID(),
			CreatedAt:  now,
			LastActive: now,
			ExpiresAt:  now.Add(m.cfg.Lifetime),
		},
		dirty: true,
	}
}

// Save writes the session cookie, or clears it for a destroyed session.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	if sess.destroyed {
		m.Destroy(w)
		return nil
	}

	now := m.cfg.Now().UTC()
	sess.Touch(now)
	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	cookie := m.cookie(encoded)
	if expiry := sess.data.ExpiresAt; !expiry.IsZero() {
		cookie.Expires = expiry
		cookie.MaxAge = -1
		if remaining := expiry.Sub(now); remaining > 0 {
			cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
		}
	}
	http.SetCookie(w, cookie)
	return nil
}

// Destroy clears the session cookie.
func (m *Manager) Destroy(w http.ResponseWriter) {
	cookie := m.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

func (m *Manager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: m.httpOnly,
		SameSite: m.cfg.CookieSameSite,
	}
}

func (m *Manager) expired(d Data, now time.Time) bool {
	if !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt) {
		return true
	}
	last := d.LastActive
	if last.IsZero() {
		last = d.CreatedAt
	}
	return !last.IsZero() && now.Sub(last) > m.cfg.IdleTimeout
}

// Session is the state of one session during one request.
type Session struct {
	data      Data
	dirty     bool
	destroyed bool
}

// ID returns the stable session identifier. Server-side state such as
// drafts and staged images is keyed by it.
func (s *Session) ID() string { return s.data.ID }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.data.CreatedAt }

// ExpiresAt returns the absolute expiry.
func (s *Session) ExpiresAt() time.Time { return s.data.ExpiresAt }

// User returns the signed-in staff member, if any.
func (s *Session) User() *User { return s.data.User }

// SetUser records the signed-in staff member.
func (s *Session) SetUser(user *User) {
	if sameUser(s.data.User, user) {
		return
	}
	if user != nil {
		copied := *user
		copied.Roles = slices.Clone(user.Roles)
		user = &copied
	}
	s.data.User = user
	s.dirty = true
}

// SetFlash stores a notice for the next page render.
func (s *Session) SetFlash(kind, message string) {
	if message == "" {
		return
	}
	s.data.Flash = &Flash{Kind: kind, Message: message}
	s.dirty = true
}

// PopFlash returns and clears the pending notice.
func (s *Session) PopFlash() (Flash, bool) {
	if s.data.Flash == nil {
		return Flash{}, false
	}
	flash := *s.data.Flash
	s.data.Flash = nil
	s.dirty = true
	return flash, true
}

// Destroy marks the session for deletion at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed }

// Touch moves the last-active time forward.
func (s *Session) Touch(now time.Time) {
	if now = now.UTC(); now.After(s.data.LastActive) {
		s.data.LastActive = now
		s.dirty = true
	}
}

// Dirty reports whether the session changed during this request.
func (s *Session) Dirty() bool { return s.dirty }

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Data {
	data := s.data
	if data.User != nil {
		u := *data.User
		u.Roles = slices.Clone(u.Roles)
		data.User = &u
	}
	return data
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UID == b.UID && a.Email == b.Email && slices.Equal(a.Roles, b.Roles)
}

func mustGenerateID() string {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("session: generate id: %w", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
