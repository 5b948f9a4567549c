package ui

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/drafts"
	custommw "github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	appsession "github.com/husnain417/Steth-admin-Panel/internal/admin/session"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/layouts"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Products products.Service
	Drafts   drafts.Store
	Stager   *media.Stager
	Catalog  *catalog.Catalog
	// BackendToken, when set, replaces the staff token on backend calls.
	BackendToken string
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	products     products.Service
	drafts       drafts.Store
	stager       *media.Stager
	catalog      catalog.Catalog
	backendToken string
}

// NewHandlers wires the UI handler set. Missing dependencies fall back to
// in-memory implementations suitable for local development.
func NewHandlers(deps Dependencies) *Handlers {
	service := deps.Products
	if service == nil {
		service = products.NewStaticService()
	}
	store := deps.Drafts
	if store == nil {
		store = drafts.NewMemoryStore(0)
	}
	stager := deps.Stager
	if stager == nil {
		stager = media.NewStager(media.NewMemoryPreviews("/admin"))
	}
	cat := catalog.Default()
	if deps.Catalog != nil {
		cat = deps.Catalog.Clone()
	}
	return &Handlers{
		products:     service,
		drafts:       store,
		stager:       stager,
		catalog:      cat,
		backendToken: strings.TrimSpace(deps.BackendToken),
	}
}

// SessionEnded discards the drafts and staged images of a finished session.
func (h *Handlers) SessionEnded(ctx context.Context, ended appsession.Data) {
	logger := observability.FromContext(ctx)
	if err := h.drafts.DeleteSession(ctx, ended.ID); err != nil {
		logger.Warn("drafts: delete on session end failed", zap.Error(err))
	}
	if err := h.stager.ReleaseSession(ctx, ended.ID); err != nil {
		logger.Warn("media: release on session end failed", zap.Error(err))
	}
}

// requestContext gathers what every handler needs about the caller.
type requestContext struct {
	user     *custommw.User
	session  *appsession.Session
	basePath string
	token    string
}

func (h *Handlers) begin(w http.ResponseWriter, r *http.Request) (requestContext, bool) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return requestContext{}, false
	}
	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return requestContext{}, false
	}
	token := h.backendToken
	if token == "" {
		token = user.Token
	}
	return requestContext{
		user:     user,
		session:  sess,
		basePath: custommw.BasePathFromContext(ctx),
		token:    token,
	}, true
}

// page builds the shell for a full render and consumes the pending flash.
func (rc requestContext) page() layouts.Page {
	var page layouts.Page
	if flash, ok := rc.session.PopFlash(); ok {
		page.FlashKind = flash.Kind
		page.Flash = flash.Message
	}
	return page
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component, status int) {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
