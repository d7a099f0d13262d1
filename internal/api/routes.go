package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions carries the settings main passes to Routes.
type RouterOptions struct {
	CORSOrigins    []string
	RateLimitRPM   int
	LoginRateLimit int
	RequestTimeout time.Duration
	// MetricsHandler is served on /metrics when set.
	MetricsHandler http.Handler
}

func (h *Handler) Routes(m *Middleware, opts RouterOptions) *chi.Mux {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Compress)
	r.Use(m.Timeout(opts.RequestTimeout))
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(m.CORS(opts.CORSOrigins))
	r.Use(m.RateLimit(opts.RateLimitRPM))

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Get("/", h.Index)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Get("/{id}", h.GetCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Patch("/{id}", h.PartialUpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Post("/", h.CreatePost)
			r.Get("/{id}", h.GetPost)
			r.Put("/{id}", h.UpdatePost)
			r.Patch("/{id}", h.PartialUpdatePost)
			r.Delete("/{id}", h.DeletePost)
			r.Post("/{id}/add_comment", h.AddComment)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", h.ListComments)
			r.Post("/", h.CreateComment)
			r.Get("/{id}", h.GetComment)
			r.Put("/{id}", h.UpdateComment)
			r.Patch("/{id}", h.PartialUpdateComment)
			r.Delete("/{id}", h.DeleteComment)
			r.Post("/{id}/approve", h.ApproveComment)
			r.Post("/{id}/unapprove", h.UnapproveComment)
		})

		r.Route("/home", func(r chi.Router) {
			r.Get("/stats", h.HomeStats)
			r.Get("/featured", h.FeaturedPosts)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(m.LoginRateLimit(opts.LoginRateLimit)).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/check", h.CheckAuth)
		})
	})

	return r
}
