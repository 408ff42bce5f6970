package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/SGK112/Newcountertops/internal/middleware"
)

// Лимиты запросов с одного IP, как в исходных настройках API.
const (
	rateLimitWindow = 15 * time.Minute
	apiRateLimit    = 100
	authRateLimit   = 5
)

// SetupRouter настраивает HTTP-маршруты и middleware маркетплейса столешниц.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	apiLimiter := custommiddleware.NewRateLimiter(apiRateLimit, rateLimitWindow)
	authLimiter := custommiddleware.NewRateLimiter(authRateLimit, rateLimitWindow)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware)

			r.Post("/leads", h.SubmitLead)

			r.Get("/fabricators", h.FindMatches)
			r.Get("/fabricators/{id}/reviews", h.GetReviews)

			r.Route("/countertops", func(r chi.Router) {
				r.Get("/", h.ListCountertops)
				r.Get("/materials", h.Materials)
				r.Get("/{slug}", h.GetCountertop)
			})

			r.Get("/search", h.Search)
			r.Get("/recommendations", h.Recommendations)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)

			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(h.authMiddleware.AdminOnly)

			r.Get("/dashboard", h.Dashboard)

			r.Get("/leads", h.ListLeads)
			r.Get("/leads/{id}", h.GetLead)
			r.Put("/leads/{id}", h.UpdateLead)

			r.Get("/fabricators", h.ListFabricators)
			r.Post("/fabricators", h.CreateFabricator)
			r.Put("/fabricators/{id}", h.UpdateFabricator)
			r.Post("/fabricators/{id}/reviews", h.AddReview)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
