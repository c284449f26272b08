package grpc

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Listener owns the gRPC server, its health service and the TCP listener
type Listener struct {
	server *grpc.Server
	health *health.Server
	log    zerolog.Logger
	port   int
}

// NewListener builds a gRPC server with RebalanceService, health and reflection registered
// An empty token disables authentication
func NewListener(log zerolog.Logger, port int, token string, srv RebalanceServiceServer) *Listener {
	var opts []grpc.ServerOption
	if token != "" {
		opts = append(opts, grpc.UnaryInterceptor(AuthInterceptor(token)))
	}

	server := grpc.NewServer(opts...)
	RegisterRebalanceServiceServer(server, srv)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	reflection.Register(server)

	return &Listener{
		server: server,
		health: healthServer,
		log:    log.With().Str("component", "grpc").Logger(),
		port:   port,
	}
}

// Serve listens on the configured port and blocks until Stop
func (l *Listener) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", l.port, err)
	}
	l.log.Info().Int("port", l.port).Msg("Starting gRPC server")
	return l.server.Serve(lis)
}

// ServeOn serves on an existing listener
func (l *Listener) ServeOn(lis net.Listener) error {
	return l.server.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight calls
func (l *Listener) Stop() {
	l.log.Info().Msg("Shutting down gRPC server")
	l.health.Shutdown()
	l.server.GracefulStop()
}
