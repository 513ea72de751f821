package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"logvault/internal/db"
	"logvault/internal/domain/archive"
	"logvault/internal/domain/health"
	"logvault/internal/domain/reports"
	"logvault/internal/platform/config"
	cryptoutil "logvault/internal/platform/crypto"
	"logvault/internal/platform/jobs"
	"logvault/internal/platform/locks"
	"logvault/internal/platform/metrics"
	"logvault/internal/platform/storage"
	archiveshandler "logvault/internal/transport/http/handlers/archives"
	healthhandler "logvault/internal/transport/http/handlers/health"
	reportshandler "logvault/internal/transport/http/handlers/reports"
	"logvault/internal/transport/http/api"
	"logvault/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	store, err := storage.New(cfg.StorageDir)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	var crypto *cryptoutil.Service
	if cfg.EncryptionPassphrase != "" {
		crypto, err = cryptoutil.NewFromPassphrase(cfg.EncryptionPassphrase, cfg.EncryptionSalt)
	} else {
		crypto, err = cryptoutil.New(cfg.EncryptionKey)
	}
	if err != nil {
		log.Fatalf("encryption init failed: %v", err)
	}

	tableLocks, err := locks.New(cfg.LockDir)
	if err != nil {
		log.Fatalf("lock dir init failed: %v", err)
	}

	collector := metrics.New()
	registry := archive.NewStore(pool)
	source := archive.NewSourceStore(pool)
	exporter := archive.NewExporter(pool, cfg.ChunkSize)
	packager := archive.NewPackager(store, crypto, cfg.Compression, cfg.VerifyChecksums)

	service := archive.NewService(registry, source, exporter, packager, tableLocks, collector)
	service.DefaultThresholdRows = cfg.ThresholdRows
	service.DefaultThresholdDays = cfg.ThresholdDays

	healthCfg := health.DefaultConfig()
	healthCfg.CorruptionScanLimit = cfg.CorruptionScanLimit
	healthCfg.DiskUsageThreshold = cfg.DiskUsageThreshold
	healthCfg.MaxFailedArchives = cfg.MaxFailedArchives
	healthCfg.RetentionYears = cfg.RetentionYears
	healthCfg.RetentionOverrides = cfg.RetentionOverrides
	checker := health.NewChecker(registry, store, healthCfg)

	jobsService := jobs.New(pool, cfg, service, checker)
	jobsService.Start(ctx)

	reportsService := reports.NewService(registry)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.AdminJWTSecret))

		archiveshandler.NewHandler(service).RegisterRoutes(r)
		healthhandler.NewHandler(checker).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		}
	})

	log.Printf("logvault server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
