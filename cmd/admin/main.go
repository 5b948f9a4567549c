package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/config"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/drafts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger level comes from config, so fall back to a default logger.
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	rootCtx := context.Background()

	draftStore, closeDrafts := buildDraftStore(rootCtx, cfg.Drafts, logger)
	defer closeDrafts()

	stager := media.NewStager(buildPreviewStore(cfg, logger), media.WithIdleTimeout(cfg.Media.StagingIdle))

	productService, err := products.NewHTTPService(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
	if err != nil {
		logger.Fatal("product backend", zap.Error(err))
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookiePath:   cfg.Server.BasePath,
		CookieSecure: cfg.Session.CookieSecure,
	})
	if err != nil {
		logger.Fatal("session manager", zap.Error(err))
	}

	srv := httpserver.New(httpserver.Config{
		Address:          cfg.Server.Address,
		BasePath:         cfg.Server.BasePath,
		Environment:      cfg.Server.Environment,
		Authenticator:    buildAuthenticator(rootCtx, cfg.Firebase, logger),
		Sessions:         sessions,
		CSRFCookieSecure: cfg.Session.CookieSecure,
		AuthCookieSecure: cfg.Session.CookieSecure,
		Logger:           logger,
		Products:         productService,
		Drafts:           draftStore,
		Stager:           stager,
		Catalog:          loadCatalog(cfg.Catalog, logger),
		BackendToken:     cfg.Backend.APIToken,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go stager.Run(ctx, 0)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("admin server listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("environment", cfg.Server.Environment),
		zap.String("draft_store", cfg.Drafts.Store),
		zap.String("preview_store", cfg.Media.PreviewStore),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := stager.Close(shutdownCtx); err != nil {
		logger.Warn("release staged previews failed", zap.Error(err))
	}
}

func buildDraftStore(ctx context.Context, cfg config.DraftConfig, logger *zap.Logger) (drafts.Store, func()) {
	if cfg.Store != config.StoreRedis {
		logger.Info("drafts kept in memory")
		return drafts.NewMemoryStore(cfg.TTL), func() {}
	}

	client, err := drafts.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	store, err := drafts.NewRedisStore(client, cfg.TTL, drafts.WithPrefix(cfg.RedisPrefix), drafts.WithLockTTL(cfg.LockTTL))
	if err != nil {
		logger.Fatal("redis draft store", zap.Error(err))
	}
	return store, func() { _ = client.Close() }
}

func buildPreviewStore(cfg config.Config, logger *zap.Logger) media.PreviewStore {
	if cfg.Media.PreviewStore != config.StoreCloudinary {
		return media.NewMemoryPreviews(cfg.Server.BasePath)
	}

	cld, err := media.NewCloudinaryClient(
		cfg.Media.CloudinaryURL,
		cfg.Media.CloudinaryCloudName,
		cfg.Media.CloudinaryAPIKey,
		cfg.Media.CloudinaryAPISecret,
	)
	if err != nil {
		logger.Fatal("cloudinary", zap.Error(err))
	}
	previews, err := media.NewCloudinaryPreviews(&cld.Upload, cfg.Media.Folder)
	if err != nil {
		logger.Fatal("cloudinary previews", zap.Error(err))
	}
	return previews
}

func loadCatalog(cfg config.CatalogConfig, logger *zap.Logger) *catalog.Catalog {
	if cfg.File == "" {
		return nil
	}
	cat, err := catalog.LoadFile(cfg.File)
	if err != nil {
		logger.Fatal("catalog", zap.String("file", cfg.File), zap.Error(err))
	}
	return &cat
}

func buildAuthenticator(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) middleware.Authenticator {
	if cfg.ProjectID == "" {
		logger.Warn("FIREBASE_PROJECT_ID not set; using passthrough authenticator")
		return nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID: cfg.ProjectID,
	})
	if err != nil {
		logger.Error("failed to initialise Firebase app", zap.Error(err))
		return nil
	}

	client, err := app.Auth(ctx)
	if err != nil {
		logger.Error("failed to initialise Firebase auth client", zap.Error(err))
		return nil
	}

	logger.Info("Firebase authenticator enabled", zap.String("project", cfg.ProjectID))
	return middleware.NewFirebaseAuthenticator(client)
}
