package server

import (
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes the standard grpc.health.v1 service for processes
// that have no HTTP surface of their own, such as the task worker.
type HealthServer struct {
	Addr string

	grpcServer *grpc.Server
	health     *health.Server
	ln         net.Listener
	logger     zerolog.Logger
	stopOnce   sync.Once
}

func StartHealth(addr string, logger zerolog.Logger) (*HealthServer, error) {
	if addr == "" {
		return nil, errors.New("no health address configured")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	s := &HealthServer{
		Addr:       ln.Addr().String(),
		grpcServer: grpcServer,
		health:     hs,
		ln:         ln,
		logger:     logger,
	}
	go func() {
		if err := grpcServer.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error().Err(err).Str("addr", s.Addr).Msg("health server error")
		}
	}()
	return s, nil
}

// SetServing flips the overall and per-service status together.
func (s *HealthServer) SetServing(service string, serving bool) {
	if s == nil {
		return
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	if service != "" {
		s.health.SetServingStatus(service, status)
	}
}

func (s *HealthServer) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	})
}
