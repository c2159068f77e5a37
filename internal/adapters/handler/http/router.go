package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewHandler(
	allowedOrigins []string,
	profileHandler *ProfileHandler,
	identityHandler *IdentityHandler,
	voteHandler *VoteHandler,
	visibilityHandler *VisibilityHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileHandler.ListProfiles)
			r.Get("/{id}/questions", profileHandler.GetQuestions)
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", identityHandler.GetMe)
			r.Put("/{id}", identityHandler.RegisterAsMe)
			r.Delete("/", identityHandler.Unregister)
		})

		r.Route("/votes", func(r chi.Router) {
			r.Get("/status", voteHandler.GetStatus)
			r.Post("/", voteHandler.SubmitVote)
			r.Post("/refresh", voteHandler.Refresh)
			r.Delete("/error", voteHandler.ClearError)
		})

		r.Post("/visibility", visibilityHandler.SetVisibility)
	})

	return r
}
