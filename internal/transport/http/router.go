package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/maxschool-bot/internal/application/directory"
	"github.com/maxschool-bot/internal/application/registration"
	"github.com/maxschool-bot/internal/config"
	"github.com/maxschool-bot/internal/domain"
	"github.com/maxschool-bot/internal/transport/bot"
	"github.com/maxschool-bot/internal/transport/http/handler"
	appmiddleware "github.com/maxschool-bot/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router: the bot webhook plus
// the admin API under /v1.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to the login endpoint.
	loginRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	// The platform delivers updates in bursts; allow more headroom here.
	webhookRL := appmiddleware.NewRateLimiter(rate.Limit(30), 60)

	regSvc := registration.NewService(deps.RecordRepo, registration.NewMemorySessionStore(), deps.CodeSender)
	dirSvc := directory.NewService(directory.ServiceDeps{
		RecordRepo:   deps.RecordRepo,
		GuardianRepo: deps.GuardianRepo,
		MentorRepo:   deps.MentorRepo,
	})
	dispatcher := bot.NewDispatcher(regSvc, deps.Replier)

	healthH := handler.NewHealthHandler()
	webhookH := handler.NewWebhookHandler(dispatcher)
	loginH := handler.NewLoginHandler(cfg, deps.JWTProvider)
	recordH := handler.NewRecordHandler(dirSvc)

	r.With(webhookRL.Limit).Post("/webhook", webhookH.Receive)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(loginRL.Limit).Post("/login", loginH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Post("/records", recordH.Create)
			r.Get("/records", recordH.List)
			r.Get("/records/{id}", recordH.Get)
			r.Put("/records/{id}", recordH.Update)
			r.Delete("/records/{id}", recordH.Delete)

			r.Post("/records/{id}/guardians", recordH.AddGuardian)
			r.Get("/records/{id}/guardians", recordH.ListGuardians)
			r.Post("/records/{id}/mentors", recordH.AddMentor)
			r.Get("/records/{id}/mentors", recordH.ListMentors)
		})
	})

	return r
}
