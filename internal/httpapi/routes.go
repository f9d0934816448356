package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DoyleJ11/algo-battle-backend/internal/observability"
	"github.com/DoyleJ11/algo-battle-backend/internal/ws"
)

func SetupRoutes(d Deps, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger(d.Logger))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/algorithms", ListAlgorithms(d))
	r.Get("/ws", ws.Handler(ws.Deps{
		Hub:            d.Hub,
		Catalog:        d.Catalog,
		Validate:       d.Validate,
		Logger:         d.Logger,
		OriginPatterns: origins,
	}))

	r.Route("/battles", func(r chi.Router) {
		r.Post("/", CreateBattle(d))
		r.Get("/", ListBattles(d))
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", GetBattle(d))
			r.Delete("/", DeleteBattle(d))
			r.Post("/draft", InitDraft(d))
			r.Post("/picks", DraftPick(d))
			r.Post("/actions", SubmitAction(d))
			r.Post("/challenge", ChallengeResult(d))
			r.Post("/reset", ResetBattle(d))
		})
	})

	r.Route("/typing", func(r chi.Router) {
		r.Get("/passage", TypingPassage(d))
		r.Post("/score", TypingScore(d))
	})
	return r
}
