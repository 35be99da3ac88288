package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/learnhub-api/internal/auth"
	"github.com/redmonkez12/learnhub-api/internal/config"
	"github.com/redmonkez12/learnhub-api/internal/enrollment"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/profile"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth       *auth.Handler
	Profile    *profile.Handler
	Enrollment *enrollment.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders(!cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Post("/user/signup", h.Auth.Signup)
	r.Post("/user/login", h.Auth.Login)
	r.Post("/user/logout", h.Auth.Logout)
	r.Post("/forgot/password", h.Auth.ForgotPassword)
	r.Post("/reset/password", h.Auth.ResetPassword)

	// Profile and enrollment only demand a session token when configured to
	r.Group(func(r chi.Router) {
		if cfg.Auth.RequireToken {
			r.Use(authMiddleware.RequireAuth)
		}
		r.Put("/user/profile/{id}", h.Profile.Update)
		r.Post("/enroll/course/{userId}/{courseId}", h.Enrollment.Enroll)
		r.Get("/view/enrolled/course/{id}", h.Enrollment.List)
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
	httputil.RespondJSON(w, r, map[string]string{"status": "api is running"}, http.StatusOK)
}
