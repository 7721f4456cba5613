package grpcserver

import (
	"context"
	"net"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type Server struct {
	addr   string
	lis    net.Listener
	health *health.Server
	logger zerolog.Logger
	Server *grpc.Server
}

func New(addr string, logger zerolog.Logger, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(RecoverUnary(logger), LogUnary(logger)),
	}, opts...)
	s := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return &Server{
		addr:   addr,
		health: hs,
		logger: logger,
		Server: s,
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve runs on an existing listener, e.g. a bufconn in tests.
func (s *Server) Serve(lis net.Listener) error {
	s.lis = lis
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("grpc listening")
	return s.Server.Serve(lis)
}

// SetServingStatus reports a registered service's health.
func (s *Server) SetServingStatus(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, st)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// LogUnary logs every unary call with its code and duration.
func LogUnary(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		ev := logger.Info()
		switch code {
		case codes.OK, codes.InvalidArgument, codes.NotFound, codes.AlreadyExists,
			codes.FailedPrecondition, codes.Unauthenticated:
		default:
			ev = logger.Error().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call")
		return resp, err
	}
}

// RecoverUnary turns handler panics into Internal errors.
func RecoverUnary(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Str("method", info.FullMethod).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
