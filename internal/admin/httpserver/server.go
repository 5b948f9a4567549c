package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/drafts"
	custommw "github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/ui"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
	appsession "github.com/husnain417/Steth-admin-Panel/internal/admin/session"
	"github.com/husnain417/Steth-admin-Panel/public"
)

const defaultMaxBodyBytes = 100 << 20

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	LoginPath        string
	Environment      string
	Authenticator    custommw.Authenticator
	Sessions         custommw.SessionStore
	CSRFCookieName   string
	CSRFCookiePath   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
	// AuthCookieSecure marks the token cookie Secure even behind a TLS-terminating proxy.
	AuthCookieSecure bool
	MaxBodyBytes     int64
	Logger           *zap.Logger

	Products     products.Service
	Drafts       drafts.Store
	Stager       *media.Stager
	Catalog      *catalog.Catalog
	BackendToken string
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(logger))
	router.Use(observability.RequestLogger(custommw.UserID))
	router.Use(observability.Recovery(logger))
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(chimw.RequestSize(maxBody))

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static", zap.Error(err))
	}
	staticPrefix := joinBase(basePath, "/public/")
	router.Handle(staticPrefix+"*", http.StripPrefix(staticPrefix, http.FileServer(http.FS(staticContent))))

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.DefaultAuthenticator()
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sessions = ephemeralSessions(basePath, logger)
	}

	stager := cfg.Stager
	if stager == nil {
		stager = media.NewStager(media.NewMemoryPreviews(basePath))
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Products:     cfg.Products,
		Drafts:       cfg.Drafts,
		Stager:       stager,
		Catalog:      cfg.Catalog,
		BackendToken: cfg.BackendToken,
	})

	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: firstNonEmpty(cfg.CSRFCookiePath, basePath),
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	}

	mountAdminRoutes(router, basePath, routeOptions{
		Environment: firstNonEmpty(cfg.Environment, "Development"),
		Sessions:    sessions,
		CSRF:        csrfCfg,
		Handlers:    handlers,
		Login:       newSignIn(authenticator, basePath, loginPath, cfg.AuthCookieSecure),
		Auth:        custommw.Auth(authenticator, loginPath),
		LoginPath:   loginPath,
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ephemeralSessions backs local runs without SESSION_HASH_KEY. Sessions do
// not survive a restart.
func ephemeralSessions(basePath string, logger *zap.Logger) custommw.SessionStore {
	mgr, err := appsession.NewManager(appsession.Config{
		HashKey:    securecookie.GenerateRandomKey(32),
		BlockKey:   securecookie.GenerateRandomKey(32),
		CookiePath: basePath,
	})
	if err != nil {
		logger.Fatal("session manager", zap.Error(err))
	}
	logger.Warn("no session store configured: using ephemeral keys")
	return mgr
}

type routeOptions struct {
	Environment string
	Sessions    custommw.SessionStore
	CSRF        custommw.CSRFConfig
	Handlers    *ui.Handlers
	Login       *signIn
	Auth        func(http.Handler) http.Handler
	LoginPath   string
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	h := opts.Handlers
	common := chi.Middlewares{
		custommw.RequestInfoMiddleware(base, opts.Environment),
		custommw.HTMX(),
		custommw.NoStore(),
		custommw.Session(opts.Sessions, h.SessionEnded),
		custommw.CSRF(opts.CSRF),
	}

	// Sign-in lives outside the authenticated group; an overridden login
	// path may also sit outside the base path.
	login := router.With(common...)
	login.Get(opts.LoginPath, opts.Login.Form)
	login.Post(opts.LoginPath, opts.Login.Submit)
	login.Post(joinBase(base, "/logout"), opts.Login.Logout)

	productsHome := joinBase(base, "/products")
	if base != "/" {
		router.With(common...).With(opts.Auth).Get(base, redirectTo(productsHome))
	}

	router.Route(productsHome, func(r chi.Router) {
		r.Use(common...)
		r.Use(opts.Auth)

		r.With(custommw.RequireCapability(rbac.CapProductsView)).Get("/", h.ProductsList)

		r.Group(func(r chi.Router) {
			r.Use(custommw.RequireCapability(rbac.CapProductsEdit))
			r.Get("/new", h.ProductsNew)
			r.Get("/{productID}/edit", h.ProductsEdit)
			r.Route("/drafts/{draft}", func(r chi.Router) {
				r.Post("/details", h.ComposerDetails)
				r.Post("/colors", h.ComposerAddColor)
				r.Post("/colors/custom", h.ComposerAddCustomColor)
				r.Post("/colors/delete", h.ComposerRemoveColor)
				r.Post("/inventory", h.ComposerAddInventory)
				r.Post("/inventory/delete", h.ComposerRemoveInventory)
				r.Post("/submit", h.ProductsSubmit)
				r.Post("/discard", h.ProductsDiscard)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(custommw.RequireCapability(rbac.CapProductsImages))
			for _, step := range ui.ImageSteps {
				r.Route("/{productID}/"+step, func(r chi.Router) {
					r.Get("/", h.ImagesPage(step))
					r.Post("/stage", h.ImagesStage(step))
					r.Post("/replace", h.ImagesReplace(step))
					r.Post("/remove", h.ImagesRemove(step))
					r.Post("/upload", h.ImagesUpload(step))
					r.Post("/finish", h.ImagesFinish(step))
				})
			}
		})
	})

	router.With(common...).With(opts.Auth).Get(joinBase(base, "/previews/{previewID}"), h.Preview)
}

func redirectTo(location string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		custommw.Redirect(w, r, location)
	}
}

func joinBase(base, suffix string) string {
	if base == "/" {
		return suffix
	}
	return base + suffix
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return joinBase(base, "/login")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
