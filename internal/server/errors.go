package server

import (
	"context"
	"errors"

	storage "github.com/practice-sem-2/chat-service/internal/storages"
	usecase "github.com/practice-sem-2/chat-service/internal/usecases"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WrapError converts usecase errors into gRPC statuses.
func WrapError(err error) error {
	errorMapper := []struct {
		from error
		to   codes.Code
	}{
		{usecase.ErrValidation, codes.InvalidArgument},
		{usecase.ErrNotAMember, codes.FailedPrecondition},
		{usecase.ErrForbidden, codes.PermissionDenied},
		{usecase.ErrRoomNotFound, codes.NotFound},
		{usecase.ErrMessageNotFound, codes.NotFound},
		{usecase.ErrRoomIsFull, codes.ResourceExhausted},
		{storage.ErrParticipantConflict, codes.Aborted},
	}

	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, mapping := range errorMapper {
		if errors.Is(err, mapping.from) {
			return status.Error(mapping.to, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// ErrorsInterceptor maps handler errors with WrapError and logs internal ones.
func ErrorsInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		err = WrapError(err)
		if status.Code(err) == codes.Internal {
			logger.
				WithError(err).
				WithField("method", info.FullMethod).
				Error("request failed")
		}
		return resp, err
	}
}
