package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rosterd/rosterd/internal/api/handler"
	"github.com/rosterd/rosterd/internal/api/middleware"
	"github.com/rosterd/rosterd/internal/participant"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Participants   *participant.Service
	DBPinger       handler.DBPinger
	Version        string
	RequestTimeout time.Duration
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.Participants != nil {
		instructorHandler := handler.NewInstructorHandler(deps.Participants)
		studentHandler := handler.NewStudentHandler(deps.Participants)
		enrollHandler := handler.NewEnrollHandler(deps.Participants)
		joinHandler := handler.NewJoinHandler(deps.Participants)

		r.Route("/courses/{courseId}", func(r chi.Router) {
			r.Put("/instructors", instructorHandler.Update)
			r.Delete("/instructors", instructorHandler.Delete)
			r.Post("/instructors/{email}/regkey", instructorHandler.RegenerateKey)

			r.Put("/students/{email}", studentHandler.Update)
			r.Delete("/students", studentHandler.Delete)
			r.Post("/students/{email}/regkey", studentHandler.RegenerateKey)

			r.Post("/enroll/validate", enrollHandler.Validate)
		})

		r.Get("/join", joinHandler.Resolve)
	}

	return r
}
