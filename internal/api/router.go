package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/observability"
)

// RouterParams groups the dependencies for building the HTTP router.
type RouterParams struct {
	JWTManager        *auth.JWTManager
	AuthHandler       *AuthHandler
	GroupHandler      *GroupHandler
	ExpenseHandler    *ExpenseHandler
	SettlementHandler *SettlementHandler
	Metrics           *observability.Metrics

	// RequestsPerMinute caps per-IP request rates. Zero disables limiting.
	RequestsPerMinute int
}

// NewRouter constructs the chi router with the full middleware stack and all
// API routes mounted under /api/v1.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if params.RequestsPerMinute > 0 {
		r.Use(httprate.Limit(params.RequestsPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}
	r.Use(middleware.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(params.JWTManager))

			params.AuthHandler.MountProtectedRoutes(r)
			r.Route("/groups", func(r chi.Router) {
				params.GroupHandler.MountRoutes(r)
				r.Route("/{groupID}", func(r chi.Router) {
					params.GroupHandler.MountGroupRoutes(r)
					params.SettlementHandler.MountGroupRoutes(r)
					r.Route("/expenses", params.ExpenseHandler.MountGroupRoutes)
				})
			})
			r.Route("/expenses", params.ExpenseHandler.MountRoutes)
			r.Route("/settlements", params.SettlementHandler.MountRoutes)
		})
	})

	return r
}
