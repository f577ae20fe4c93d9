package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/untunglab/juragan/internal/config"
	"github.com/untunglab/juragan/internal/db"
	"github.com/untunglab/juragan/internal/finance"
	"github.com/untunglab/juragan/internal/importer"
	"github.com/untunglab/juragan/internal/logger"
	"github.com/untunglab/juragan/internal/migrations"
	"github.com/untunglab/juragan/internal/platform"
	"github.com/untunglab/juragan/internal/project"
	"github.com/untunglab/juragan/internal/scheduler"
	"github.com/untunglab/juragan/internal/seed"
)

type server struct {
	auth      *authService
	projects  *project.Store
	platforms *platform.Store
	finance   *finance.Store
	importer  *importer.Service
	log       *zap.Logger
}

func main() {
	cfg := config.Load()

	log := logger.Must(logger.New(cfg.IsDev()))
	defer func() { _ = log.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:      cfg.AdminEmail,
		AdminPassword:   cfg.AdminPassword,
		DefaultBusiness: cfg.DefaultBusiness,
	})
	if err != nil {
		log.Fatal("failed to run startup seed", zap.Error(err))
	}
	if stats.Inserts > 0 {
		log.Info("startup seed applied", zap.Int("inserts", stats.Inserts))
	}

	projects := project.NewStore(database)
	platforms := platform.NewStore(database)
	fin := finance.NewStore(database)

	var aiClient importer.Client
	if cfg.AnthropicKey != "" {
		aiClient = importer.NewAnthropicClient(cfg.AnthropicKey)
		log.Info("ai import client enabled")
	} else {
		log.Warn("anthropic api key missing, imports must already be json")
	}
	imp := importer.NewService(aiClient, projects, log.Named("importer"))

	sched := scheduler.New(projects, fin, cfg.SnapshotSchedule, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &server{
		auth:      newAuthService(database, cfg.SessionSecret),
		projects:  projects,
		platforms: platforms,
		finance:   fin,
		importer:  imp,
		log:       log.Named("http"),
	}

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.handleProjectsList)
		r.Post("/projects", s.handleProjectCreate)
		r.Get("/projects/{id}", s.handleProjectGet)
		r.Put("/projects/{id}", s.handleProjectUpdate)
		r.Delete("/projects/{id}", s.handleProjectDelete)
		r.Post("/projects/{id}/activate", s.handleProjectActivate)
		r.Post("/projects/{id}/pricing", s.handleProjectPricing)

		r.Get("/configs", s.handleConfigsList)
		r.Post("/configs", s.handleConfigCreate)
		r.Put("/configs/{code}", s.handleConfigUpdate)
		r.Delete("/configs/{code}", s.handleConfigDelete)

		r.Get("/businesses/{id}/finance", s.handleFinanceGet)
		r.Put("/businesses/{id}/finance", s.handleFinancePut)
		r.Get("/businesses/{id}/health", s.handleHealthGet)
		r.Get("/businesses/{id}/health/history", s.handleHealthHistory)
		r.Get("/businesses/{id}/active-project", s.handleActiveProject)

		r.Post("/import", s.handleImport)
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		s.log.Error("credential check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
