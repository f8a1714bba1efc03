package server

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker reports the service as serving while the database answers pings.
type HealthChecker struct {
	*health.Server
	db       Pinger
	logger   logrus.FieldLogger
	interval time.Duration
}

func NewHealthChecker(db Pinger, logger logrus.FieldLogger, interval time.Duration) *HealthChecker {
	return &HealthChecker{
		Server:   health.NewServer(),
		db:       db,
		logger:   logger,
		interval: interval,
	}
}

func (h *HealthChecker) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WithError(err).Warning("database ping failed")
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.SetServingStatus("", st)
	return st
}

// Run checks the database every interval until ctx is done.
func (h *HealthChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ticker.C:
			h.Probe(ctx)
		case <-ctx.Done():
			h.Shutdown()
			return
		}
	}
}
