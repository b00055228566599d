package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/satellite/internal/api"
	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/delivery"
	"github.com/dmitrijs2005/satellite/internal/server/services"
	"github.com/juju/clock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services is the set of operations exposed over gRPC.
type Services struct {
	Docs        *services.DocService
	Assets      *services.AssetService
	Rules       *services.RuleService
	Controllers *services.ControllerService
	Settings    *services.SettingsService
	Delivery    *delivery.Service
}

// Observer records per-call metrics.
type Observer interface {
	ObserveRPC(method, code string, elapsed time.Duration)
}

type GRPCServer struct {
	address   string
	svc       Services
	observer  Observer
	clock     clock.Clock
	logger    logging.Logger
	jwtSecret []byte
}

var _ api.SatelliteServer = (*GRPCServer)(nil)

// NewGRPCServer returns a server listening on address once Run is called.
// observer may be nil.
func NewGRPCServer(address string, l logging.Logger, svc Services, observer Observer, clk clock.Clock, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		svc:       svc,
		observer:  observer,
		clock:     clk,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.metricsInterceptor,
		s.errorInterceptor,
		s.accessTokenInterceptor,
	))
	api.RegisterSatelliteServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}
