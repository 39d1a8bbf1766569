package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codedits/bitecheck/internal/auth"
	"github.com/codedits/bitecheck/internal/imagestore"
	"github.com/codedits/bitecheck/internal/service"
	"github.com/codedits/bitecheck/pkg/health"
	"github.com/codedits/bitecheck/pkg/middleware"
)

// Deps bundles everything the router needs.
type Deps struct {
	UserService       *service.UserService
	RestaurantService *service.RestaurantService
	ReviewService     *service.ReviewService
	Reconciler        *service.ReconcilerService
	Images            imagestore.Store
	JWTManager        *auth.JWTManager
	HealthHandler     *health.Handler
	Logger            *slog.Logger
	CORSConfig        middleware.CORSConfig
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(d.CORSConfig))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.PrometheusMetrics("bitecheck"))

	// Health check endpoints
	r.Get("/health/live", d.HealthHandler.LivenessHandler())
	r.Get("/health/ready", d.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := d.JWTManager.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Username: claims.Username,
		}, nil
	}

	authHandler := NewAuthHandler(d.UserService, d.Logger)
	userHandler := NewUserHandler(d.UserService, d.ReviewService, d.Logger)
	restaurantHandler := NewRestaurantHandler(d.RestaurantService, d.Logger)
	reviewHandler := NewReviewHandler(d.ReviewService, d.Logger)
	adminHandler := NewAdminHandler(d.Reconciler, d.Logger)
	imageHandler := NewImageHandler(d.Images, d.Logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Restaurant endpoints. Reads are public, writes require auth.
	r.Route("/api/v1/restaurants", func(r chi.Router) {
		r.Get("/", restaurantHandler.ListRestaurants)
		r.Get("/{name}", restaurantHandler.GetRestaurant)
		r.Get("/{name}/reviews", reviewHandler.ListByRestaurant)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.With(ContentTypeJSON).Post("/", restaurantHandler.CreateRestaurant)
			r.With(ContentTypeJSON).Patch("/{name}", restaurantHandler.UpdateRestaurant)
			r.Delete("/{name}", restaurantHandler.DeleteRestaurant)
		})
	})

	// Review endpoints
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Get("/{id}", reviewHandler.GetReview)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.With(ContentTypeJSON).Post("/", reviewHandler.CreateReview)
			r.With(ContentTypeJSON).Patch("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})
	})

	// Image uploads (auth required, multipart)
	r.Route("/api/v1/images", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", imageHandler.Upload)
	})

	// Current user endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.GetProfile)
		r.Get("/me/reviews", userHandler.ListMyReviews)
		r.Delete("/me", userHandler.DeleteAccount)
	})

	// Admin endpoints (auth required)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/reconcile", adminHandler.Reconcile)
	})

	return r
}
