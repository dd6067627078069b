package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskdeck/taskdeck-be/internal/api/handlers"
	"github.com/taskdeck/taskdeck-be/internal/auth"
	"github.com/taskdeck/taskdeck-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(sessions *auth.SessionStore, userService services.UserServiceProvider, taskService services.TaskServiceProvider, allowedOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The session cookie requires credentialed CORS requests.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, sessions)
	taskHandler := handlers.NewTaskHandler(taskService)

	r.Get("/healthz", handlers.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Everything below requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware())

			r.Get("/me", authHandler.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
					r.Put("/toggle", taskHandler.Toggle)
				})
			})
		})
	})

	return r
}
