package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/crewsheet/internal/common"
)

const (
	requestIDHeader = "x-request-id"
	maxMessageBytes = 32 << 20
)

// Server is the gRPC front door: contacts service, health and reflection.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func New(contacts ContactsServiceServer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryUnaryInterceptor(logger), loggingUnaryInterceptor(logger)),
		grpc.MaxRecvMsgSize(maxMessageBytes),
		grpc.MaxSendMsgSize(maxMessageBytes),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	RegisterContactsServiceServer(gs, contacts)
	reflection.Register(gs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	return &Server{grpc: gs, health: hs, logger: logger}
}

// Serve blocks until ctx is cancelled, then drains in-flight calls.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("grpc.listen", "addr", lis.Addr().String())
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		s.logger.Info("grpc.stopped")
		return nil
	}
}

// Stop ends all calls immediately.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.Stop()
}

func recoveryUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc.panic",
					"method", info.FullMethod,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func loggingUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
			return handler(ctx, req)
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDHeader); len(v) > 0 && v[0] != "" {
				ctx = common.WithRequestID(ctx, v[0])
			}
		}
		ctx, rid := common.EnsureRequestID(ctx)

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelInfo
		if code != codes.OK && code != codes.InvalidArgument && code != codes.NotFound {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "grpc.request",
			"method", info.FullMethod,
			"req_id", rid,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
