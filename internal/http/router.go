package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"portfolio-api/internal/analytics"
	"portfolio-api/internal/auth"
	"portfolio-api/internal/config"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/httputil"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/project"
	"portfolio-api/internal/settings"
	"portfolio-api/internal/task"
)

// Handlers collects the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	Task      *task.Handler
	Project   *project.Handler
	Contact   *contact.Handler
	Settings  *settings.Handler
	Analytics *analytics.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, recorder *analytics.Recorder, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
			ExposedHeaders:   []string{"Content-Length", "Retry-After", auth.RefreshedTokenHeader},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses
	r.Use(analytics.Middleware(recorder))

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/verify-email", h.Auth.VerifyEmail)
		r.Post("/resend-verification", h.Auth.ResendVerification)

		// Admin bootstrap is rejected by the service outside development
		r.Post("/create-admin", h.Auth.CreateAdmin)

		// Account routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/me", h.Auth.Me)
			r.Put("/profile", h.Auth.UpdateProfile)
			r.Post("/change-password", h.Auth.ChangePassword)
		})
	})

	// Tasks belong to authenticated users or anonymous sessions
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.OptionalAuth)
		r.Post("/", h.Task.Create)
		r.Get("/", h.Task.List)
		r.Get("/{id}", h.Task.Get)
		r.Put("/{id}", h.Task.Update)
		r.Delete("/{id}", h.Task.Delete)
	})

	// Public portfolio content
	r.Get("/projects", h.Project.List)
	r.Get("/projects/{slug}", h.Project.GetBySlug)
	r.Get("/settings", h.Settings.Get)

	// Contact form (public submit, owner read-back)
	r.Route("/contacts", func(r chi.Router) {
		r.Use(authMiddleware.OptionalAuth)
		r.Post("/", h.Contact.Submit)
		r.Get("/{id}", h.Contact.Get)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(authMiddleware.RequireAdmin)

		r.Post("/projects", h.Project.Create)
		r.Put("/projects/{id}", h.Project.Update)
		r.Delete("/projects/{id}", h.Project.Delete)

		r.Get("/contacts", h.Contact.List)
		r.Post("/contacts/{id}/read", h.Contact.MarkRead)
		r.Delete("/contacts/{id}", h.Contact.Delete)

		r.Put("/settings", h.Settings.Update)

		r.Get("/analytics", h.Analytics.Stats)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
