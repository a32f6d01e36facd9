package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/campus-events/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps carries everything the router needs wired in.
type RouterDeps struct {
	Auth          *AuthHandler
	Events        *EventHandler
	Registrations *RegistrationHandler
	Users         *UserHandler

	Resolver    middleware.UserResolver
	RateLimiter *middleware.RateLimiter
	Recorder    middleware.HTTPRecorder

	AllowedOrigin string
}

// NewRouter assembles the HTTP routing tree. Everything under /api requires a
// valid session; the auth endpoints and health check are public.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(deps.AllowedOrigin))
	r.Use(middleware.Logger(deps.Recorder))

	r.Get("/health", HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", deps.Auth.SignUp)
		r.Post("/signin", deps.Auth.SignIn)
		r.Post("/google", deps.Auth.GoogleSignIn)
		r.Post("/signout", deps.Auth.SignOut)
		r.Post("/resend-verification", deps.Auth.ResendVerification)
		r.Get("/verify", deps.Auth.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(deps.Resolver))
			r.Get("/me", deps.Auth.Me)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.Resolver))
		r.Use(deps.RateLimiter.General())

		r.Route("/events", func(r chi.Router) {
			r.Get("/", deps.Events.ListEvents)
			r.Post("/", deps.Events.CreateEvent)
			r.Get("/stream", deps.Registrations.StreamEvents)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deps.Events.GetEvent)
				r.Put("/", deps.Events.UpdateEvent)
				r.Delete("/", deps.Events.DeleteEvent)

				r.Get("/registered", deps.Registrations.IsRegistered)
				r.Get("/registrations", deps.Registrations.ListEventRegistrations)

				// Registration writes get their own stricter limit.
				r.With(deps.RateLimiter.Register()).Post("/register", deps.Registrations.Register)
				r.With(deps.RateLimiter.Register()).Post("/unregister", deps.Registrations.Unregister)
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", deps.Registrations.ListMyRegistrations)
			r.Get("/stream", deps.Registrations.StreamMyRegistrations)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", deps.Users.ListPeople)
			r.Get("/me", deps.Users.GetMe)
			r.Put("/me", deps.Users.UpdateMe)
			r.Get("/{id}", deps.Users.GetUser)
		})

		r.Get("/analytics/categories", deps.Events.CategoryStats)
	})

	return r
}
