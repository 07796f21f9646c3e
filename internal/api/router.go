package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hackgods/salon-scheduling/internal/booking"
	"github.com/hackgods/salon-scheduling/internal/salon"
	"github.com/hackgods/salon-scheduling/internal/scheduler"
)

// BookingService is the part of *booking.Service the handlers use.
type BookingService interface {
	Snapshot(ctx context.Context) (*salon.Snapshot, error)
	Reset(ctx context.Context) error
	InvalidateCache()

	AvailableSlots(ctx context.Context, q booking.AvailabilityQuery) (scheduler.Result, error)
	CreateAppointment(ctx context.Context, in booking.CreateAppointmentInput) (*salon.Appointment, error)
	SetAppointmentStatus(ctx context.Context, id uuid.UUID, status salon.AppointmentStatus) error
	MasterSchedule(ctx context.Context, masterID uuid.UUID, from, to string) ([]salon.Appointment, error)

	UpsertClient(ctx context.Context, fullName, phone string) (*salon.Client, error)
	ClientHistory(ctx context.Context, phone, status string) (*salon.Client, []salon.Appointment, error)

	ListMasters(ctx context.Context, includeInactive bool) ([]salon.Master, error)
	CreateMaster(ctx context.Context, m salon.Master) (*salon.Master, error)
	ToggleMasterActive(ctx context.Context, id uuid.UUID) error
	DeleteMaster(ctx context.Context, id uuid.UUID) error

	ListServices(ctx context.Context, includeInactive bool) ([]salon.Service, error)
	ListServicesByMaster(ctx context.Context, masterID uuid.UUID) ([]salon.Service, error)
	CreateService(ctx context.Context, svc salon.Service) (*salon.Service, error)
	ToggleServiceActive(ctx context.Context, id uuid.UUID) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	SetMasterService(ctx context.Context, masterID, serviceID uuid.UUID, enabled bool) error

	UpsertWorkingSlot(ctx context.Context, in booking.WorkingSlotInput) (*salon.WorkingSlot, error)
}

type RouterConfig struct {
	Service      BookingService
	PostgresPing PingFunc
	RedisPing    PingFunc
	Logger       *zap.Logger
	Metrics      *HTTPMetrics
	Gatherer     prometheus.Gatherer
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger.Named("http")))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Health endpoints
	health := NewHealthHandler(cfg.PostgresPing, cfg.RedisPing, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	svc := cfg.Service
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", snapshotHandler(svc))
		r.Post("/reset", resetHandler(svc))
		r.Post("/cache/invalidate", invalidateCacheHandler(svc))

		r.Post("/clients/upsert", upsertClientHandler(svc))
		r.Get("/clients/history", clientHistoryHandler(svc))

		r.Get("/availability", availabilityHandler(svc))

		r.Post("/appointments", createAppointmentHandler(svc))
		r.Patch("/appointments/{id}/status", setAppointmentStatusHandler(svc))

		r.Get("/masters", listMastersHandler(svc))
		r.Post("/masters", createMasterHandler(svc))
		r.Patch("/masters/{id}/toggle", toggleMasterHandler(svc))
		r.Delete("/masters/{id}", deleteMasterHandler(svc))
		r.Get("/masters/{id}/services", masterServicesHandler(svc))
		r.Get("/masters/{id}/appointments", masterScheduleHandler(svc))

		r.Get("/services", listServicesHandler(svc))
		r.Post("/services", createServiceHandler(svc))
		r.Patch("/services/{id}/toggle", toggleServiceHandler(svc))
		r.Delete("/services/{id}", deleteServiceHandler(svc))

		r.Put("/master-services", setMasterServiceHandler(svc))
		r.Put("/working-slots", upsertWorkingSlotHandler(svc))
	})

	return r
}
