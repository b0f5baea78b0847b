package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleanline-pos/api/internal/config"
	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/draft"
	"github.com/cleanline-pos/api/internal/enum"
	"github.com/cleanline-pos/api/internal/handler"
	"github.com/cleanline-pos/api/internal/metrics"
	mw "github.com/cleanline-pos/api/internal/middleware"
	"github.com/cleanline-pos/api/internal/service"
	"github.com/cleanline-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, branch scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, drafts *draft.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/branches/{bid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	finalizer := service.NewFinalizeService(
		pool,
		func(db database.DBTX) service.FinalizeStore {
			return database.New(db)
		},
		drafts,
		hub,
	)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/branches/{bid}", func(r chi.Router) {
			r.Use(mw.RequireBranch)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.With(mw.RequireRole(enum.UserRoleOwner)).Post("/", userHandler.Create)
			})

			clientHandler := handler.NewClientHandler(queries)
			r.Route("/clients", clientHandler.RegisterRoutes)

			catalogHandler := handler.NewCatalogHandler(queries)
			r.Route("/catalog", catalogHandler.RegisterRoutes)

			draftHandler := handler.NewDraftHandler(drafts, queries, finalizer, handler.DraftDefaults{
				WarehouseID:         cfg.DefaultWarehouseID,
				DeliveryWarehouseID: cfg.DefaultDeliveryWarehouseID,
				CompanyID:           cfg.DefaultCompanyID,
				UrgencyType:         cfg.DefaultUrgency,
			})
			r.Route("/drafts", draftHandler.RegisterRoutes)

			orderHandler := handler.NewOrderHandler(queries, hub)
			r.Route("/orders", orderHandler.RegisterRoutes)

			reportHandler := handler.NewReportHandler(queries)
			r.Route("/reports", func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner, enum.UserRoleManager))
				reportHandler.RegisterRoutes(r)
			})
		})
	})

	return r
}
