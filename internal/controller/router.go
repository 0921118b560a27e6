package controller

import (
	"net/http"

	"github.com/Freeeeeet/smartcare/internal/controller/handlers"
	"github.com/Freeeeeet/smartcare/internal/controller/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig зависимости HTTP маршрутизатора
type RouterConfig struct {
	Handlers *handlers.Handlers
	Logger   *zap.Logger

	// AdminAuth nil отключает административные маршруты
	AdminAuth middleware.TokenParser

	MetricsHandler http.Handler
	CORSOrigins    []string
}

// NewRouter собирает все маршруты
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Post("/triage", h.Triage)

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListReservations)
		r.Get("/slot-status", h.SlotStatus)
	})

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.ListResources)
		r.Get("/{id}", h.GetResource)

		if cfg.AdminAuth != nil {
			r.Group(func(admin chi.Router) {
				admin.Use(middleware.AdminJWT(cfg.AdminAuth))
				admin.Post("/", h.CreateResource)
				admin.Delete("/{id}", h.DeleteResource)
				admin.Post("/{id}/slots", h.AddSlot)
				admin.Delete("/{id}/slots/{slotID}", h.DeleteSlot)
			})
		}
	})

	if cfg.AdminAuth != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Post("/login", h.Login)
			admin.Group(func(protected chi.Router) {
				protected.Use(middleware.AdminJWT(cfg.AdminAuth))
				protected.Get("/reconciliation", h.Reconciliation)
				protected.Post("/reconciliation", h.RepairReconciliation)
			})
		})
	}

	return r
}
