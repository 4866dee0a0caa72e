package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

// NewGRPCServer builds the gRPC server exposing health checking and
// reflection. Every unary call is logged and application errors are mapped
// to gRPC status codes.
func NewGRPCServer(logger zerolog.Logger) (*grpc.Server, *health.Server) {
	log := logger.With().Str("handler", "grpc").Logger()

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(log)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

func unaryLogger(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		err = toStatus(err)

		log.Debug().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("latency", time.Since(start)).
			Msg("gRPC request")
		return resp, err
	}
}

// toStatus converts an application error into a gRPC status error. Errors
// that already carry a status pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return status.Error(codes.Internal, "internal error")
	}

	switch appErr.Code {
	case errors.ErrCodeNotFound:
		return status.Error(codes.NotFound, appErr.Message)
	case errors.ErrCodeInvalidInput:
		return status.Error(codes.InvalidArgument, appErr.Message)
	case errors.ErrCodeForbidden:
		return status.Error(codes.PermissionDenied, appErr.Message)
	case errors.ErrCodeUnauthorized:
		return status.Error(codes.Unauthenticated, appErr.Message)
	case errors.ErrCodeConflict:
		if appErr.Retryable {
			return status.Error(codes.Aborted, appErr.Message)
		}
		return status.Error(codes.FailedPrecondition, appErr.Message)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// WatchHealth flips the overall serving status with the result of ping until
// ctx is cancelled.
func WatchHealth(ctx context.Context, hs *health.Server, ping func(ctx context.Context) error, interval time.Duration, log zerolog.Logger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("Storage health check failed")
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
