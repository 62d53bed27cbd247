package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bizprofile/internal/http/middleware"
	"bizprofile/internal/service"
)

// Deps are the handles the HTTP layer is built from.
type Deps struct {
	DB          Pinger
	Sessions    service.SessionManager
	Auth        service.AuthService
	Businesses  service.BusinessService
	Uploads     service.UploadService
	Cookie      CookieConfig
	RateLimiter *middleware.RateLimiter
	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer
	// Prefix is the mount point of the API routes, e.g. "/api".
	Prefix string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group(d.Prefix)
	session := middleware.Session(d.Sessions)
	requireUser := middleware.RequireUser()
	// Only authenticated routes resolve the session.
	authed := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{session, requireUser, h}
	}

	login := []fiber.Handler{CreateSession(d.Auth, d.Cookie)}
	if d.RateLimiter != nil {
		login = append([]fiber.Handler{d.RateLimiter.Handler()}, login...)
	}
	api.Post("/auth/session", login...)
	api.Get("/auth/me", authed(CurrentUser())...)
	api.Post("/auth/logout", Logout(d.Sessions, d.Cookie))

	api.Get("/profile/business-types", BusinessTypes(d.Businesses))
	api.Get("/businesses", authed(ListBusinesses(d.Businesses))...)
	api.Post("/business", authed(CreateBusiness(d.Businesses))...)
	api.Get("/business/:id", authed(GetBusiness(d.Businesses))...)
	api.Put("/business/:id", authed(UpdateBusiness(d.Businesses))...)
	api.Delete("/business/:id", authed(DeleteBusiness(d.Businesses))...)

	api.Post("/business/:id/upload-logo", authed(UploadLogo(d.Uploads))...)
	api.Get("/business/:id/logo/:logo_id", FetchLogo(d.Uploads))
	api.Post("/business/:id/upload-document", authed(UploadDocument(d.Uploads))...)
	api.Get("/business/:id/document/:doc_id", authed(FetchDocument(d.Uploads))...)
	api.Delete("/business/:id/document/:doc_id", authed(DeleteDocument(d.Uploads))...)
}
