package routes

import (
	"github.com/Dosada05/torneos-api/handlers"
	"github.com/Dosada05/torneos-api/middleware"
	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	creds services.CredentialService,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	matchHandler *handlers.MatchHandler,
	authHandler *handlers.AuthHandler,
	uploadHandler *handlers.UploadHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAdmin := middleware.RequireTournamentAdmin(creds)

	router.Route("/api", func(r chi.Router) {
		r.Route("/torneos", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Post("/", tournamentHandler.Create)
			r.Get("/paginado", tournamentHandler.Paginate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByID)

				r.Post("/auth/admin", authHandler.VerifyAdminKey)
				r.Post("/auth/participante", authHandler.VerifyParticipantKey)

				r.Post("/participantes", participantHandler.Enroll)
				r.Delete("/participantes/{participanteID}", participantHandler.Remove)

				// Первая загрузка обложки без токена, замена — с токеном;
				// различие делает сам хендлер.
				r.Post("/portada", uploadHandler.UploadCover)

				// GET /{recurso} закрывает participantes и partidos разом.
				r.Get("/{recurso}", tournamentHandler.GetResource)

				// Мутации только для админа турнира из токена.
				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)

					r.Put("/", tournamentHandler.Update)
					r.Delete("/", tournamentHandler.Delete)

					r.Post("/partidos", matchHandler.Create)
					r.Put("/partidos/{partidoID}", matchHandler.Update)
					r.Delete("/partidos/{partidoID}", matchHandler.Delete)
				})
			})
		})

		r.Get("/imagenes/torneos/{id}/{archivo}", uploadHandler.ServeTournamentImage)
	})

	router.Get("/ws/torneos/{id}", webSocketHandler.ServeWs)
}
