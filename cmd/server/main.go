// @title           Custom Print Backend API
// @version         1.0.0
// @description     Backend API for garment customization requests: draft forms and designs, submit requests with payment references, and review them from the admin console.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"custom-print-backend/internal/catalog"
	"custom-print-backend/internal/config"
	"custom-print-backend/internal/database"
	"custom-print-backend/internal/design"
	"custom-print-backend/internal/drafts"
	"custom-print-backend/internal/handlers"
	"custom-print-backend/internal/logger"
	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/requests"
	"custom-print-backend/internal/review"
	"custom-print-backend/internal/services"
	"custom-print-backend/internal/store"
	"custom-print-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		zl.Fatal("failed to load catalog", zap.Error(err))
	}

	requestStore, closeStore, err := openRequestStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize request store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	draftStore, closeDrafts, err := openDraftStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize draft store", zap.Error(err))
	}
	defer closeDrafts()

	// Design uploads are optional
	var designStorage handlers.DesignStorage
	if cfg.UploadsEnabled() {
		key := cfg.SupabaseServiceRoleKey
		if key == "" {
			key = cfg.SupabasePublishableKey
		}
		storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, key, cfg.SupabaseStorageBucket)
		if err != nil {
			zl.Fatal("failed to initialize storage client", zap.Error(err))
		}
		designStorage = storageClient
	} else {
		zl.Warn("SUPABASE_URL not set, design uploads are disabled")
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	classifier := design.NewClassifier(design.ClassifierConfig{
		CDNHosts:      cfg.CDNHosts,
		StorageHost:   cfg.StorageHost(),
		StorageBucket: cfg.SupabaseStorageBucket,
	})
	assembler := requests.NewAssembler(cat)

	draftService := services.NewDraftService(assembler, classifier, draftStore, m, zl)
	submissionService := services.NewSubmissionService(assembler, requestStore, draftStore, m, zl)
	console := review.NewConsole(requestStore, design.NewParser(classifier), m, zl)
	poller := review.NewPoller(requestStore, cfg.ReviewPollInterval, m, zl)

	router := handlers.NewRouter(cfg, zl, handlers.Handlers{
		Health:   handlers.NewHealthHandler(requestStore, cfg.StoreBackend),
		Catalog:  handlers.NewCatalogHandler(cat),
		Drafts:   handlers.NewDraftsHandler(draftService, submissionService),
		Upload:   handlers.NewUploadHandler(designStorage, draftService, m, cfg.MaxUploadMB),
		Requests: handlers.NewRequestsHandler(requestStore),
		Review:   handlers.NewReviewHandler(console, poller),
		Webhook:  handlers.NewWebhookHandler(cfg, submissionService),
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openRequestStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (store.RequestStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			migrator := database.NewMigratorWithDB(dbClient.DB(), zl)
			if err := migrator.Run(ctx); err != nil {
				dbClient.Close()
				return nil, nil, err
			}
			zl.Info("migrations completed successfully")
		}
		return dbClient, func() { dbClient.Close() }, nil

	case config.StoreBackendRest:
		client, err := supabase.NewClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return supabase.NewRestClient(client), func() {}, nil

	default:
		zl.Warn("using in-memory request store, records are lost on restart")
		return store.NewMemory(), func() {}, nil
	}
}

func openDraftStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (drafts.Store, func(), error) {
	if cfg.RedisURL == "" {
		zl.Warn("REDIS_URL not set, drafts are kept in memory")
		return drafts.NewMemoryStore(cfg.DraftTTL), func() {}, nil
	}

	client, err := drafts.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return drafts.NewRedisStore(client, cfg.DraftTTL), func() { client.Close() }, nil
}
