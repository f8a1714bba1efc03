package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

func TestHealthChecker_Probe(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var pingErr error
	h := NewHealthChecker(pingerFunc(func(ctx context.Context) error {
		return pingErr
	}), logger, time.Second)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Probe(context.Background()))
	resp, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	pingErr = errors.New("connection refused")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Probe(context.Background()))
	resp, err = h.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealthChecker_RunStopsWithContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := NewHealthChecker(pingerFunc(func(ctx context.Context) error {
		return nil
	}), logger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Timeout")
	}
}
