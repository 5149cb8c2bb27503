package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orangery/ams/backend/internal/setup"
	mw "github.com/orangery/ams/shared/middleware"
	"github.com/orangery/ams/shared/middleware/metrics"
)

// New creates the chi router with every route of the API.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	httpCfg := deps.Config.Public.HTTP

	r.Use(chimw.RequestID)
	// only trust forwarding headers when a proxy we control sets them
	if httpCfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   httpCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(httpCfg.SecureHeaders))
	r.Use(metrics.Middleware)

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/user", func(r chi.Router) {
		r.With(mw.RateLimit(deps.SignUpLimiter, mw.GetIP)).Post("/register-member", h.RegisterMember)
		r.With(mw.RateLimit(deps.LoginLimiter, mw.GetIP)).Post("/auth-login", h.Login)
		r.Post("/auth-refresh", h.Refresh)

		r.With(authMw.NeedAuth()).Get("/me", h.Me)

		r.Group(func(r chi.Router) {
			r.Use(authMw.AdminOnly())

			r.Post("/register-admin", h.RegisterAdmin)
			r.Post("/new-members/activate", h.ActivateMember)
			r.Post("/new-members/activate-all", h.ActivateAllMembers)
			r.Post("/new-members/reject", h.RejectMember)
			r.Post("/admin-members/reject-all", h.RejectAllMembers)

			r.Get("/view-dates-table", h.ViewDatesTable)
			r.Get("/query-dates-table/{user_id}", h.QueryDatesTable)
			r.Post("/members/{user_id}/dates", h.AddEventDate)
			r.Get("/members/{user_id}/profile-pic", h.ProfilePicture)

			r.Get("/retrieve-all-admin-members", h.Admins)
			r.Get("/retrieve-admin-member", h.Admin)
			r.Post("/update-members-role", h.UpdateRole)
			r.Get("/retrieve-members-details", h.Members)
			r.Get("/retrieve-specific-member-details", h.Member)
			r.Get("/retrieve-pending-members", h.PendingMembers)
			r.Delete("/delete-a-member", h.DeleteMember)
			r.Delete("/delete-all-members", h.DeleteAllMembers)
		})
	})

	r.Route("/message", func(r chi.Router) {
		r.Use(authMw.AdminOnly())
		r.Post("/write-message", h.WriteMessage)
		r.Post("/custom-message", h.CustomMessage)
		r.Get("/logs", h.MessageLogs)
	})

	return r
}
