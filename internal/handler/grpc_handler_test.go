package handler

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"not found", errors.NotFound("order", "o-1"), codes.NotFound},
		{"invalid input", errors.InvalidInput("status", "bad"), codes.InvalidArgument},
		{"forbidden", errors.Forbidden("no"), codes.PermissionDenied},
		{"domain conflict", errors.Conflict("settled"), codes.FailedPrecondition},
		{"retryable conflict", errors.Retryable(nil, "serialization failure"), codes.Aborted},
		{"foreign error", stderrors.New("boom"), codes.Internal},
		{"existing status", status.Error(codes.Unavailable, "down"), codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus(tt.err)))
		})
	}
	assert.NoError(t, toStatus(nil))
}

func TestWatchHealth(t *testing.T) {
	hs := health.NewServer()
	healthy := make(chan bool, 1)
	healthy <- false

	ping := func(ctx context.Context) error {
		select {
		case ok := <-healthy:
			if !ok {
				return stderrors.New("database down")
			}
		default:
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		WatchHealth(ctx, hs, ping, 5*time.Millisecond, zerolog.Nop())
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
