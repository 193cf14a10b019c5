// Package grpcserver expone el servicio estándar de health de gRPC para que
// los orquestadores sondeen la librería junto a su API HTTP.
package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// Servicios que reporta el health server además de la entrada general "".
const (
	ServiceCatalog = "librosapi.Catalog"
	ServiceCart    = "librosapi.Cart"
)

type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func New() *Server {
	g := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	h := health.NewServer()
	healthpb.RegisterHealthServer(g, h)
	reflection.Register(g)

	for _, svc := range []string{"", ServiceCatalog, ServiceCart} {
		h.SetServingStatus(svc, healthpb.HealthCheckResponse_SERVING)
	}
	return &Server{grpc: g, health: h}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Shutdown reporta NOT_SERVING y luego drena las llamadas en curso.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.Debug().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("took", time.Since(start)).
		Msg("grpc call")
	return resp, err
}
