package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/metrics"
	"github.com/atinyakov/SchoolClinic/internal/middleware"
	"github.com/atinyakov/SchoolClinic/internal/view"
)

// pagePaths are the friendly GET routes for each page.
var pagePaths = map[view.Page]string{
	view.Login:       "/login",
	view.Signup:      "/signup",
	view.Home:        "/home",
	view.StudentList: "/students",
	view.Inventory:   "/inventory",
	view.Request:     "/request",
}

// NewRouter constructs the HTTP handler for the clinic.
//
// Routes:
//
//	GET  /               → login or dashboard, depending on the session
//	GET  /page/{name}    → pageHandler.Page (unknown names show login)
//	GET  /login, /signup, /home, /students, /inventory, /request
//	POST /login, /signup → authHandler (throttled by limiter)
//	POST /logout         → authHandler.Logout
//	POST /request        → pageHandler.SubmitRequest
//	GET  /metrics, /healthz
//
// Middleware chain (applied in order): panic recovery, metrics, session
// identity, request logging.
func NewRouter(
	authHandler *AuthHandler,
	pageHandler *PageHandler,
	sessions middleware.IdentitySource,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHTTP)
	r.Use(middleware.WithSession(sessions))
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/", pageHandler.Index)
	r.Get("/page/{name}", pageHandler.Page)
	for page, path := range pagePaths {
		r.Get(path, pageHandler.Show(page))
	}

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Handler)
		}
		r.Post("/login", authHandler.Login)
		r.Post("/signup", authHandler.Signup)
	})
	r.Post("/logout", authHandler.Logout)
	r.Post("/request", pageHandler.SubmitRequest)

	return r
}
