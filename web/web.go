// Package web provides the HTTP surface: the metered v1 read API, the
// checkout endpoints, and the JSON admin API.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/auth"
	"github.com/starfeed/starfeed/adapters/metrics"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/ports"
)

// Handler provides all HTTP endpoints.
type Handler struct {
	gate     *app.GateService
	checkout *app.CheckoutService
	content  *app.ContentService
	keySvc   *app.KeyService
	userSvc  *app.UserService
	tokens   *auth.TokenService
	orders   ports.OrderStore
	gateway  ports.PaymentGateway
	logger   zerolog.Logger
	metrics  *metrics.Collector
}

// Deps contains dependencies for the HTTP handler.
type Deps struct {
	Gate     *app.GateService
	Checkout *app.CheckoutService
	Content  *app.ContentService
	Keys     *app.KeyService
	Users    *app.UserService
	Tokens   *auth.TokenService
	Orders   ports.OrderStore
	Gateway  ports.PaymentGateway
	Logger   zerolog.Logger
	Metrics  *metrics.Collector
}

// NewHandler creates the HTTP handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		gate:     deps.Gate,
		checkout: deps.Checkout,
		content:  deps.Content,
		keySvc:   deps.Keys,
		userSvc:  deps.Users,
		tokens:   deps.Tokens,
		orders:   deps.Orders,
		gateway:  deps.Gateway,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

// Router builds the full route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.Health)
	r.Method("GET", "/metrics", promhttp.Handler())

	// Metered read API. Every route passes the quota gate.
	r.Route("/v1", func(r chi.Router) {
		r.Use(h.withAPIKey)

		r.Get("/celebrities", h.ListCelebrities)
		r.Get("/celebrities/{slug}", h.GetCelebrity)
		r.Get("/celebrities/{slug}/outfits", h.ListCelebrityOutfits)
		r.Get("/movies", h.ListMovies)
		r.Get("/movies/{slug}", h.GetMovie)
		r.Get("/movies/{slug}/reviews", h.ListMovieReviews)
		r.Get("/news", h.ListNews)
		r.Get("/news/{slug}", h.GetNews)
		r.Get("/outfits/{id}", h.GetOutfit)
		r.Get("/reviews/{id}", h.GetReview)
		r.Get("/usage", h.GetUsage)
	})

	// Checkout, authenticated by API key: the key identifies the buyer.
	r.Route("/checkout", func(r chi.Router) {
		r.Use(h.withAPIKeyNoMeter)

		r.Get("/plans", h.ListPlans)
		r.Post("/orders", h.CreateOrder)
		r.Post("/orders/verify", h.VerifyPayment)
	})

	// Admin surface, JWT bearer auth.
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.withAdminToken)

			r.Get("/orders", h.AdminListOrders)
			r.Post("/orders/{id}/credit", h.AdminManualCredit)
			r.Post("/orders/{id}/refund", h.AdminRefund)
			r.Post("/users", h.AdminCreateUser)
			r.Post("/users/{id}/keys", h.AdminIssueKey)
			r.Delete("/keys/{id}", h.AdminRevokeKey)

			r.Post("/celebrities", h.AdminCreateCelebrity)
			r.Put("/celebrities/{id}", h.AdminUpdateCelebrity)
			r.Delete("/celebrities/{id}", h.AdminDeleteCelebrity)
			r.Post("/movies", h.AdminCreateMovie)
			r.Put("/movies/{id}", h.AdminUpdateMovie)
			r.Delete("/movies/{id}", h.AdminDeleteMovie)
			r.Post("/news", h.AdminCreateNews)
			r.Put("/news/{id}", h.AdminUpdateNews)
			r.Delete("/news/{id}", h.AdminDeleteNews)
			r.Post("/outfits", h.AdminCreateOutfit)
			r.Put("/outfits/{id}", h.AdminUpdateOutfit)
			r.Delete("/outfits/{id}", h.AdminDeleteOutfit)
			r.Post("/reviews", h.AdminCreateReview)
			r.Delete("/reviews/{id}", h.AdminDeleteReview)
		})
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// observe records request metrics.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := statusClass(ww.Status())
		path := routePattern(r)
		h.metrics.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// routePattern returns the chi pattern for low-cardinality metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
