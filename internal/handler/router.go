package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/daily-hug/internal/handler/endpoint"
	"github.com/zhouzirui/daily-hug/internal/handler/persona"
	"github.com/zhouzirui/daily-hug/internal/handler/session"
	middlewarePkg "github.com/zhouzirui/daily-hug/internal/middleware"
	personaModel "github.com/zhouzirui/daily-hug/internal/model/persona"
	aiService "github.com/zhouzirui/daily-hug/internal/service/ai"
	chatService "github.com/zhouzirui/daily-hug/internal/service/chat"
)

// Dependencies groups what the router wires into handlers.
type Dependencies struct {
	Traits         personaModel.Store
	Greeter        endpoint.Greeter
	Replier        aiService.Replier // nil when no chat model is configured
	Sessions       *chatService.Service
	DefaultPersona string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// greet/chat stay at the root, where terminal clients expect them
	endpoint.New(deps.Greeter, deps.Replier).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		persona.New(deps.Traits).RegisterRoutes(api)

		if deps.Sessions != nil {
			session.New(deps.Sessions, deps.Traits, deps.DefaultPersona).RegisterRoutes(api)
		}
	})

	return r
}
