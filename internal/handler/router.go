package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	authHandler "github.com/abaanfida/unixora/internal/handler/auth"
	chatHandler "github.com/abaanfida/unixora/internal/handler/chat"
	matchHandler "github.com/abaanfida/unixora/internal/handler/match"
	"github.com/abaanfida/unixora/internal/middleware"
	authService "github.com/abaanfida/unixora/internal/service/auth"
	"github.com/abaanfida/unixora/internal/service/conversation"
	"github.com/abaanfida/unixora/internal/service/history"
	matchService "github.com/abaanfida/unixora/internal/service/match"
	"github.com/abaanfida/unixora/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(authSvc *authService.Service, convSvc *conversation.Service, histSvc *history.Service, matchSvc *matchService.Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		// Public auth endpoints.
		authHandler.New(authSvc).RegisterRoutes(api)

		// Everything else requires a verified bearer token.
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(authSvc))

			chat := chatHandler.New(convSvc, histSvc)
			chat.RegisterRoutes(protected)
			chatHandler.NewWebSocketHandler(chat).RegisterRoutes(protected)

			matchHandler.New(matchSvc).RegisterRoutes(protected)
		})
	})

	return r
}
