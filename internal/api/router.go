package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LogContext)
	r.Use(middleware.Logger)
	r.Use(s.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(s.RateLimitMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(LimitBody)

	r.NotFound(notFoundHandler)

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if s.wsHub != nil {
		r.Get("/ws", s.ServeWsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.RegisterHandler)
			r.Post("/login", s.LoginHandler)
			r.Post("/forgot", s.ForgotPasswordHandler)
			r.Post("/reset", s.ResetPasswordHandler)
		})

		r.Route("/invoice", func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Post("/generate", s.GenerateInvoiceHandler)
			r.Get("/", s.ListInvoicesHandler)
			r.Get("/{invoiceId}", s.GetInvoiceHandler)
			r.Get("/{invoiceId}/pdf", s.DownloadInvoiceHandler)
		})
	})

	return r
}
