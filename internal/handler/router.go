package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkondo/ludo/internal/metrics"
	"github.com/mkondo/ludo/internal/middleware"
)

// RouterDeps bundles everything NewRouter needs.
type RouterDeps struct {
	// middleware
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// observability
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// services
	AuthService       AuthServiceInterface
	TokenIntrospector TokenIntrospector
	ResetMailer       ResetMailer
	UserService       UserServiceInterface
	CatalogService    CatalogServiceInterface
	CommerceService   CommerceServiceInterface
	SocialService     SocialServiceInterface
	CommunityService  CommunityServiceInterface
}

// NewRouter wires every endpoint and the middleware chain.
//
// Global middleware order:
//
//	CORS -> security headers -> logging -> recovery -> metrics
//
// The unauthenticated auth endpoints sit behind the per-IP limiter; the
// protected group sits behind bearer auth and the per-user limiter.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.HTTPMiddleware())
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.TokenIntrospector, deps.ResetMailer)
	userHandler := NewUserHandler(deps.UserService)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	commerceHandler := NewCommerceHandler(deps.CommerceService)
	socialHandler := NewSocialHandler(deps.SocialService)
	communityHandler := NewCommunityHandler(deps.CommunityService)

	// --- unauthenticated routes ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// Credential endpoints: per-IP rate limit, no session required.
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Post("/login", authHandler.Login)
			r.Post("/signup", authHandler.SignUp)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/introspect", authHandler.Introspect)
		})

		// Session-holder endpoints under /api/auth.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Get("/me", authHandler.Me)
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	// Public read-only catalog and community browsing.
	r.Get("/api/games", catalogHandler.List)
	r.Get("/api/games/{id}", catalogHandler.Get)
	r.Get("/api/posts", communityHandler.List)
	r.Get("/api/posts/{id}", communityHandler.Get)
	r.Get("/api/users/{id}", userHandler.GetProfile)

	// --- authenticated routes ---
	// Middleware stack: bearer auth -> per-user rate limit.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// profiles
		r.Get("/api/users", userHandler.Search)
		r.Patch("/api/users/me", userHandler.UpdateMe)

		// cart and checkout
		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", commerceHandler.ViewCart)
			r.Post("/items", commerceHandler.AddToCart)
			r.Delete("/items/{gameID}", commerceHandler.RemoveFromCart)
			r.Post("/checkout", commerceHandler.Checkout)
		})

		// wishlist
		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", commerceHandler.ViewWishlist)
			r.Post("/", commerceHandler.AddToWishlist)
			r.Delete("/{gameID}", commerceHandler.RemoveFromWishlist)
		})

		// library and orders
		r.Get("/api/library", commerceHandler.ViewLibrary)
		r.Get("/api/orders", commerceHandler.ListOrders)

		// friendships
		r.Route("/api/friends", func(r chi.Router) {
			r.Get("/", socialHandler.ListFriends)
			r.Delete("/{userID}", socialHandler.Unfriend)

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", socialHandler.ListIncoming)
				r.Post("/", socialHandler.SendRequest)
				r.Post("/{id}/accept", socialHandler.Accept)
				r.Post("/{id}/decline", socialHandler.Decline)
			})
		})

		// community writes
		r.Post("/api/posts", communityHandler.Create)
		r.Delete("/api/posts/{id}", communityHandler.Delete)
	})

	return r
}
