package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/assignment"
	"pms/internal/domain/audit"
	"pms/internal/domain/evalline"
	"pms/internal/domain/evaluation"
	"pms/internal/domain/org"
	"pms/internal/platform/config"
	"pms/internal/platform/db"
	"pms/internal/platform/metrics"
	"pms/internal/transport/http/api"
	assignmenthandler "pms/internal/transport/http/handlers/assignment"
	audithandler "pms/internal/transport/http/handlers/audit"
	evallinehandler "pms/internal/transport/http/handlers/evalline"
	"pms/internal/transport/http/middleware"
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
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	orgStore := org.NewStore(pool)
	evallineStore := evalline.NewStore(pool)
	evallineService := evalline.NewService(evallineStore, orgStore)
	assignmentService := assignment.NewService(assignment.NewStore(pool), orgStore, evaluation.NewStore(pool), evallineStore)
	auditService := audit.New(pool)
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if !cfg.RequestLogDisabled {
		router.Use(middleware.Logger)
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

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

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		assignmenthandler.NewHandler(assignmentService, auditService).RegisterRoutes(r)
		evallinehandler.NewHandler(evallineService, auditService).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
	})

	log.Printf("assignment engine listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
