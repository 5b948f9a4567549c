package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	appsession "github.com/husnain417/Steth-admin-Panel/internal/admin/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "admin.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// SessionEndHook runs after a session is destroyed or expires, with the
// state it held. Hooks discard server-side state keyed by the session.
type SessionEndHook func(ctx context.Context, ended appsession.Data)

// Session attaches the decoded session to the request context and persists
// changes back to the client cookie.
func Session(store SessionStore, hooks ...SessionEndHook) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			sess, err := store.Load(r)
			var expired *appsession.ExpiredError
			switch {
			case errors.As(err, &expired):
				logger.Info("session expired: resetting")
				runHooks(r.Context(), hooks, expired.Data)
				store.Destroy(w)
				sess = store.New()
			case err != nil || sess == nil:
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			sw := &sessionWriter{ResponseWriter: w}
			sw.commit = func() {
				if sess.Destroyed() {
					runHooks(r.Context(), hooks, sess.Snapshot())
				}
				if err := store.Save(w, sess); err != nil {
					logger.Error("session save failed", zap.Error(err))
				}
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.once.Do(sw.commit)
		})
	}
}

// sessionWriter persists the session just before the response headers are
// sent, since the cookie cannot be set afterwards.
type sessionWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *sessionWriter) WriteHeader(status int) {
	w.once.Do(w.commit)
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.once.Do(w.commit)
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func runHooks(ctx context.Context, hooks []SessionEndHook, data appsession.Data) {
	ctx = context.WithoutCancel(ctx)
	for _, hook := range hooks {
		hook(ctx, data)
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}
