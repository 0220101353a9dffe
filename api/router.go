package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/raushankrgupta/virtual-tryon/utils"
)

// NewRouter builds the chi router with the middleware stack and all routes.
// Only allowedOrigins may make credentialed cross-origin calls.
func NewRouter(h *Handler, auth *Authenticator, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true, // session cookie
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(utils.LatencyMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Inference calls can take minutes
		r.Use(middleware.Timeout(5 * time.Minute))

		r.Post("/scrape", h.Scrape)
		r.Post("/extract-garment", h.ExtractGarment)
		r.Post("/garment/resolve", h.ResolveGarment)
		r.Get("/products", h.Products)
		r.Post("/webhook/replicate", h.ReplicateWebhook)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/tryon", h.TryOn)
			r.Post("/upload", h.Upload)
			r.Get("/gallery", h.Gallery)
		})
	})

	return r
}
