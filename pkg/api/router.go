package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/auth"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/handlers"
	apimiddleware "github.com/Lightningwave/safesplit-sub000/pkg/api/middleware"
	"github.com/Lightningwave/safesplit-sub000/pkg/metrics"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/artifact"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	Store      store.Store
	JWTService *auth.JWTService
	Gate       *gate.Gate
	Artifacts  *artifact.Store
	MasterKey  []byte
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// Routes:
//   - GET  /health - Liveness probe
//   - GET  /health/ready - Readiness probe
//   - GET  /metrics - Prometheus metrics
//   - POST /api/v1/auth/login - Password authentication
//   - POST /api/v1/auth/2fa/verify - Second-factor answer
//   - POST /api/v1/auth/refresh - Token refresh
//   - GET  /api/v1/auth/me - Current user info
//   - POST /api/v1/shares/{token}/access - Share password submission
//   - POST /api/v1/shares/{token}/verify - Share second-factor answer
//   - POST /api/v1/users/me/password - Change own password
//   - /api/v1/users/me/totp* - Authenticator enrollment
//   - /api/v1/users/* - User management (admin only)
//   - /api/v1/files/* - Sealed file upload and retrieval
//   - /api/v1/shares - Share creation, listing, revocation
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(deps.Store)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(deps.Store, deps.JWTService, deps.Gate)
	userHandler := handlers.NewUserHandler(deps.Store)
	fileHandler := handlers.NewFileHandler(deps.Store, deps.Artifacts, deps.MasterKey)
	shareHandler := handlers.NewShareHandler(deps.Store, deps.Gate, deps.Artifacts, deps.MasterKey)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes - mostly unauthenticated
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/2fa/verify", authHandler.Verify2FA)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(apimiddleware.JWTAuth(deps.JWTService))
				r.Get("/me", authHandler.Me)
			})
		})

		// Share retrieval surface - gated by the share password, not JWT
		r.Post("/shares/{token}/access", shareHandler.Access)
		r.Post("/shares/{token}/verify", shareHandler.Verify)

		// Password change - authenticated but exempt from the
		// MustChangePassword check so a flagged user can comply
		r.Route("/users/me/password", func(r chi.Router) {
			r.Use(apimiddleware.JWTAuth(deps.JWTService))
			r.Post("/", userHandler.ChangePassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.JWTAuth(deps.JWTService))
			r.Use(apimiddleware.RequirePasswordChange("/api/v1/users/me/password"))

			r.Route("/users", func(r chi.Router) {
				r.Route("/me/totp", func(r chi.Router) {
					r.Post("/", userHandler.EnrollTOTP)
					r.Post("/confirm", userHandler.ConfirmTOTP)
					r.Delete("/", userHandler.DisableTOTP)
				})

				r.Group(func(r chi.Router) {
					r.Use(apimiddleware.RequireAdmin())
					r.Post("/", userHandler.Create)
					r.Get("/", userHandler.List)
					r.Get("/{username}", userHandler.Get)
					r.Patch("/{username}", userHandler.Update)
					r.Delete("/{username}", userHandler.Delete)
				})
			})

			r.Route("/files", func(r chi.Router) {
				r.Post("/", fileHandler.Upload)
				r.Get("/", fileHandler.List)
				r.Get("/{id}", fileHandler.Download)
				r.Delete("/{id}", fileHandler.Delete)
			})

			r.Route("/shares", func(r chi.Router) {
				r.Post("/", shareHandler.Create)
				r.Get("/", shareHandler.List)
				r.Delete("/{token}", shareHandler.Delete)
			})
		})
	})

	return r
}

// isHealthPath returns true if the request path is a probe endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") || path == "/metrics"
}

// requestLogger logs requests through the internal logger and seeds the
// request context with a LogContext so handlers can attach fields.
//
// Probe requests complete at DEBUG level to keep logs quiet under
// periodic health checking.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		lc := logger.NewLogContext(r.RemoteAddr).WithRequestID(requestID)
		r = r.WithContext(logger.WithContext(r.Context(), lc))

		logger.Debug("API request started",
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		logArgs := []any{
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			logger.KeyStatus, ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
