package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/recipe-api/internal/auth"
	"github.com/redmonkez12/recipe-api/internal/config"
	"github.com/redmonkez12/recipe-api/internal/httputil"
	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/metrics"
	"github.com/redmonkez12/recipe-api/internal/ratelimit"
	"github.com/redmonkez12/recipe-api/internal/recipe"
	"github.com/redmonkez12/recipe-api/internal/user"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	User           *user.Handler
	Auth           *auth.Handler
	Recipe         *recipe.Handler
	AuthMiddleware *auth.Middleware
	// Limiter may be nil, which disables rate limiting.
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	// MediaRoot is served under /media when non-empty.
	MediaRoot string
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(middleware.Compress(5))
	// /recipe/tags/ and /recipe/tags are the same route
	r.Use(middleware.StripSlashes)

	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	r.Get("/health", handleHealth)

	if h.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(h.Gatherer))
	}

	// Swagger UI only exists in development builds
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	if h.MediaRoot != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(h.MediaRoot))))
	}

	r.Route("/user", func(r chi.Router) {
		r.With(h.Limiter.Middleware("register")).Post("/create", h.User.Register)
		r.With(h.Limiter.Middleware("token")).Post("/token", h.Auth.ObtainToken)

		// Auth runs before method matching, so an anonymous POST is a 401
		r.Route("/me", func(r chi.Router) {
			r.Use(h.AuthMiddleware.RequireAuth)
			r.Get("/", h.User.Me)
			r.Put("/", h.User.UpdateMe)
			r.Patch("/", h.User.UpdateMe)
		})
	})

	r.Route("/recipe", func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)

		r.Get("/tags", h.Recipe.ListTags)
		r.Post("/tags", h.Recipe.CreateTag)

		r.Get("/ingredient", h.Recipe.ListIngredients)
		r.Post("/ingredient", h.Recipe.CreateIngredient)

		r.Route("/recipe", func(r chi.Router) {
			r.Get("/", h.Recipe.ListRecipes)
			r.Post("/", h.Recipe.CreateRecipe)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Recipe.GetRecipe)
				r.Put("/", h.Recipe.UpdateRecipe)
				r.Patch("/", h.Recipe.UpdateRecipe)
				r.Delete("/", h.Recipe.DeleteRecipe)
				r.Post("/upload-image", h.Recipe.UploadImage)
			})
		})
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
