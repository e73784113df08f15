// Package server реализует gRPC-сервис проверки здоровья.
//
// HealthServer периодически проверяет доступность базы данных и выставляет
// статус SERVING или NOT_SERVING в стандартном сервисе grpc.health.v1.
package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
)

// ServiceName: имя сервиса в ответах проверки здоровья.
const ServiceName = "foodtrack"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer публикует готовность сервиса по gRPC.
type HealthServer struct {
	health *health.Server
	pinger Pinger
	log    *slog.Logger
}

// NewHealthServer создает HealthServer. До первой проверки статус NOT_SERVING.
func NewHealthServer(pinger Pinger, logger *slog.Logger) *HealthServer {
	h := &HealthServer{
		health: health.NewServer(),
		pinger: pinger,
		log:    logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register регистрирует сервис здоровья на gRPC-сервере.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Check пингует базу данных и обновляет статус.
func (h *HealthServer) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.log.Warn("health check failed", sl.Err(err))
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Watch выполняет Check каждые interval до отмены ctx.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}
