package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/filedrop/service/internal/audit"
	"github.com/filedrop/service/internal/catalog"
	"github.com/filedrop/service/internal/config"
	"github.com/filedrop/service/internal/db"
	"github.com/filedrop/service/internal/file"
	"github.com/filedrop/service/internal/metrics"
	appMiddleware "github.com/filedrop/service/internal/middleware"
	"github.com/filedrop/service/internal/naming"
	"github.com/filedrop/service/internal/response"
	"github.com/filedrop/service/internal/retention"
	"github.com/filedrop/service/internal/storage"

	_ "github.com/filedrop/service/docs/swagger"
)

// app holds the wired dependencies shared by the serve and sweep commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Storage
	pool    *pgxpool.Pool
	events  audit.Reader
	metrics *metrics.Metrics

	files   *file.Service
	catalog *catalog.Service
	sweeper *retention.Sweeper
}

// newApp wires dependencies: storage → service → handler.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, fs afero.Fs) (*app, error) {
	store, err := openStore(ctx, cfg, logger, fs)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, store: store, metrics: metrics.New()}

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.AuditEnabled() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.pool = pool
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			a.Close()
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		repo := audit.NewRepository(pool)
		recorder = repo
		a.events = repo
	}

	a.files = file.NewService(store, naming.NewGenerator(), file.Options{
		MaxUploadSize: cfg.MaxUploadSize.Bytes(),
		Recorder:      recorder,
		Metrics:       a.metrics,
		Logger:        logger.Named("file"),
	})
	a.catalog = catalog.NewService(store)
	a.sweeper = retention.NewSweeper(store, retention.Options{
		Retention: cfg.RetentionWindow,
		Interval:  cfg.SweepInterval,
		Recorder:  recorder,
		Metrics:   a.metrics,
		Logger:    logger.Named("retention"),
	})
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, fs afero.Fs) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendMinio:
		return storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			Logger:    logger.Named("minio"),
		})
	default:
		return storage.NewDiskStorage(fs, cfg.Storage.Dir, storage.WithPartialMaxAge(partialMaxAge(cfg)))
	}
}

// partialGrace is added to the upload timeout before a partial upload is
// considered abandoned.
const partialGrace = time.Hour

// partialMaxAge bounds how long another process may hold a partial upload in
// a shared directory. Without an upload timeout the store default applies.
func partialMaxAge(cfg *config.Config) time.Duration {
	if cfg.UploadTimeout <= 0 {
		return storage.DefaultPartialMaxAge
	}
	return cfg.UploadTimeout + partialGrace
}

// Close releases the store and the database pool.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close storage", zap.Error(err))
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) router() http.Handler {
	fileHandler := file.NewHandler(a.files, a.logger.Named("http"), a.cfg.PublicScheme, a.cfg.UploadTimeout)
	catalogHandler := catalog.NewHandler(a.catalog, a.logger.Named("http"))

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(a.logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(appMiddleware.Metrics(a.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	// Swagger UI at /swagger/, also at /api-docs/ where the service used to publish it
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/api-docs/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Post("/upload", fileHandler.Upload)
	r.Get("/file/{name}", fileHandler.Serve)
	r.Get("/download/{fileName}", fileHandler.Download)
	r.Delete("/delete/{fileName}", fileHandler.Delete)

	r.Get("/library", catalogHandler.Library)
	r.Get("/library/download/{fileName}", fileHandler.Download)
	r.Get("/library/delete/{fileName}", fileHandler.LibraryDelete)
	r.Delete("/library/delete/{fileName}", fileHandler.LibraryDelete)
	r.Get("/file-info", catalogHandler.FileInfo)

	if a.cfg.AdminEnabled() {
		sweepHandler := retention.NewHandler(a.sweeper, a.logger.Named("admin"))
		auditHandler := audit.NewHandler(a.events, a.logger.Named("admin"))

		r.Route("/admin", func(r chi.Router) {
			r.Use(appMiddleware.RequireAdmin(a.cfg.AdminJWTSecret))
			r.Post("/sweep", sweepHandler.Sweep)
			r.Get("/audit", auditHandler.Recent)
		})
	}

	return r
}
