package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/broadcast"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/services"
)

// API bundles the services behind the REST surface.
type API struct {
	users       *services.UserService
	admins      *services.AdminService
	reports     *services.ReportService
	emergencies *services.EmergencyService
	posts       *services.PostService
	hub         *broadcast.Hub
	log         logging.Logger
	jwtSecret   []byte
}

func New(users *services.UserService, admins *services.AdminService, reports *services.ReportService, emergencies *services.EmergencyService, posts *services.PostService, hub *broadcast.Hub, log logging.Logger, cfg *config.Config) *API {
	return &API{
		users:       users,
		admins:      admins,
		reports:     reports,
		emergencies: emergencies,
		posts:       posts,
		hub:         hub,
		log:         log,
		jwtSecret:   []byte(cfg.SecretKey),
	}
}

// Routes builds the router. Public routes come first; "/auth"-ed routes
// require a valid token and admin routes additionally require the token to
// belong to a moderation account.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/login", a.handleLogin)
			r.Post("/forgot-password", a.handleForgotPassword)
			r.Post("/reset-password", a.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(a.authenticate)
				r.Post("/update-password", a.handleUpdatePassword)
				r.Put("/update-user", a.handleUpdateUser)
			})

			r.Group(func(r chi.Router) {
				r.Use(a.authenticate, a.requireAdmin)
				r.Get("/users", a.handleListUsers)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/register", a.handleAdminRegister)
			r.Post("/login", a.handleAdminLogin)
			r.With(a.authenticate, a.requireAdmin).Get("/all-admins", a.handleListAdmins)
		})

		r.Route("/post", func(r chi.Router) {
			r.With(a.authenticate).Post("/create-post", a.handleCreatePost)
			r.Get("/get-all-post", a.handleListPosts)
		})

		r.Route("/report", func(r chi.Router) {
			r.With(a.authenticate).Post("/create-report", a.handleCreateReport)
			r.Get("/get-all-report", a.handleListReports)
			r.With(a.authenticate).Get("/my-reports", a.handleMyReports)

			r.Group(func(r chi.Router) {
				r.Use(a.authenticate, a.requireAdmin)
				r.Get("/responded", a.handleRespondedReports)
				r.Put("/{id}/respond", a.handleRespondReport)
				r.Put("/{id}/archive", a.handleArchiveReport)
				r.Delete("/{id}", a.handleDeleteReport)
			})
		})

		r.Route("/emergency", func(r chi.Router) {
			r.With(a.authenticate).Post("/create-emergency", a.handleCreateEmergency)
			r.Get("/get-all-emergency", a.handleListEmergencies)
			r.With(a.authenticate).Get("/my-emergencies", a.handleMyEmergencies)

			r.Group(func(r chi.Router) {
				r.Use(a.authenticate, a.requireAdmin)
				r.Get("/responded", a.handleRespondedEmergencies)
				r.Put("/{id}/respond", a.handleRespondEmergency)
				r.Put("/{id}/archive", a.handleArchiveEmergency)
				r.Delete("/{id}", a.handleDeleteEmergency)
			})
		})

		r.Get("/events", a.handleEvents)
	})

	return r
}
