package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"learnhub-web/internal/config"
	"learnhub-web/internal/handler"
	"learnhub-web/internal/middleware"
	"learnhub-web/internal/session"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Course  *handler.CourseHandler
	Payment *handler.PaymentHandler
	User    *handler.UserHandler
	Contact *handler.ContactHandler
	SEO     *handler.SEOHandler
	Metrics http.Handler
}

func New(cfg *config.Config, sessions *session.Store, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	requireSession := middleware.RequireSession(sessions)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", h.Metrics)
	r.Get("/robots.txt", h.SEO.Robots)
	r.Get("/sitemap.xml", h.SEO.Sitemap)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.Auth.Signup)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/verify-otp", h.Auth.VerifyOTP)
			auth.Post("/resend-otp", h.Auth.ResendOTP)
			auth.With(requireSession).Post("/logout", h.Auth.Logout)
			auth.Get("/session", h.Auth.Session)
		})

		api.Get("/courses", h.Course.List)
		api.With(requireSession).Get("/enrollments", h.Course.Enrollments)

		api.With(requireSession).Post("/checkout/{enrollment_id}/order", h.Payment.CreateOrder)
		api.With(requireSession).Post("/checkout/{enrollment_id}/confirm", h.Payment.Confirm)
		api.With(requireSession).Post("/checkout/{enrollment_id}/dismiss", h.Payment.Dismiss)
		api.With(requireSession).Get("/payments/{payment_id}", h.Payment.Get)
		api.With(requireSession).Delete("/payments/{payment_id}", h.Payment.Delete)

		api.With(requireSession).Put("/profile", h.User.UpdateProfile)

		api.Post("/contacts", h.Contact.Create)
	})

	return r
}
