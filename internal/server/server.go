package server

import (
	usecase "github.com/practice-sem-2/chat-service/internal/usecases"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services are the usecases request handlers are built from.
type Services struct {
	Rooms         *usecase.RoomsUsecase
	Membership    *usecase.MembershipUsecase
	ReadPositions *usecase.ReadPositionsUsecase
}

// RegisterFunc attaches a gRPC service backed by Services.
type RegisterFunc func(srv *grpc.Server, s Services)

func NewGrpcServer(s Services, h *HealthChecker, logger logrus.FieldLogger, register ...RegisterFunc) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(ErrorsInterceptor(logger)))
	healthpb.RegisterHealthServer(srv, h.Server)
	for _, r := range register {
		r(srv, s)
	}
	return srv
}
