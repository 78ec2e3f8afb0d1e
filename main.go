package main

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/config"
	"github.com/tradepost/marketplace-console/controllers"
	"github.com/tradepost/marketplace-console/database"
	authmiddleware "github.com/tradepost/marketplace-console/middleware"
	"github.com/tradepost/marketplace-console/repositories"
	"github.com/tradepost/marketplace-console/services"
	"github.com/tradepost/marketplace-console/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize the audit backend
	audit, cleanup, err := setupAuditRepository(cfg)
	if err != nil {
		logger.Fatal("failed to initialize audit storage", zap.Error(err))
	}
	defer cleanup()

	repos := repositories.NewRepositories(audit)

	srvs := services.NewServices(repos, logger, services.Options{
		AdminSubject:      cfg.AdminSubject,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SessionLifetime:   cfg.SessionLifetime,
		MinFillTime:       cfg.MinFillTime,
	})

	ctrl := controllers.NewControllers(srvs, cfg, logger)

	r, err := setupRouter(ctrl, srvs, cfg, logger)
	if err != nil {
		logger.Fatal("failed to setup router", zap.Error(err))
	}

	fmt.Printf("🚀 Marketplace console starting on port %s\n", cfg.Port)
	fmt.Printf("🗃️  Audit backend: %s\n", cfg.AuditBackend)

	logger.Fatal("server stopped", zap.Error(http.ListenAndServe(":"+cfg.Port, r)))
}

// setupAuditRepository builds the configured audit backend and returns a
// cleanup for whatever resources it holds.
func setupAuditRepository(cfg *config.Config) (repositories.AuditRepository, func(), error) {
	switch cfg.AuditBackend {
	case config.AuditBackendSQLite:
		if err := database.InitializeDatabase(cfg.SQLitePath); err != nil {
			return nil, nil, err
		}
		return repositories.NewSQLiteAuditRepository(database.GetDB()), func() { database.CloseDB() }, nil
	default:
		store, err := storage.NewFileStore(filepath.Join(cfg.DataDir, "audit"))
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewDocumentAuditRepository(store), func() {}, nil
	}
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, srvs *services.Services, cfg *config.Config, logger *zap.Logger) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))

	// The HTTPS redirect must run before anything touches session state.
	r.Use(authmiddleware.RequireSecureTransport(cfg.UseHTTPS, cfg.TrustedProxy, logger))

	// Session middleware: file-backed so session state survives restarts and
	// is shared by every worker. The static Secure flag below matches
	// cfg.UseHTTPS only because RequireSecureTransport above has already
	// redirected plaintext requests; keep that middleware ahead of this one.
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "file",
		ProviderConfig: filepath.Join(cfg.DataDir, "sessions"),
		CookieName:     "admin_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     3600,
		Maxlifetime:    int64(cfg.SessionLifetime.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})
	r.Get("/login", ctrl.Auth.LoginForm)
	r.Post("/login", ctrl.Auth.Login)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "marketplace-console"}`)
	})

	// Public forms pass through the submission classifier, never the session
	// guard.
	r.Get("/contact", ctrl.Public.ShowContactForm)
	r.Post("/contact", ctrl.Public.SubmitContact)
	r.Get("/vendor-application", ctrl.Public.ShowVendorForm)
	r.Post("/vendor-application", ctrl.Public.SubmitVendorApplication)

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAdmin(srvs.Sessions, srvs.CSRF, logger))
		r.Use(authmiddleware.RequireCSRF(srvs.CSRF, logger))

		r.Post("/logout", ctrl.Auth.Logout)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", ctrl.Dashboard.Index)
			r.Get("/audit/submissions", ctrl.Dashboard.Submissions)
			r.Get("/audit/suspicious", ctrl.Dashboard.Suspicious)
		})
	})

	return r, nil
}
