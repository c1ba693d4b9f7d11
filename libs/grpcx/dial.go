package grpcx

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Dial creates a lazily connecting client with tracing and request-id
// propagation. Nil creds means plaintext, which is what the services speak
// inside the cluster.
func Dial(addr string, creds credentials.TransportCredentials, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	if creds == nil {
		creds = insecure.NewCredentials()
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(UnaryClientRequestIDInterceptor()),
	}
	return grpc.NewClient(addr, append(opts, extra...)...)
}

// HealthProbe asks a peer's grpc.health.v1 service whether it is serving.
type HealthProbe struct {
	conn    *grpc.ClientConn
	service string
	timeout time.Duration
}

// NewHealthProbe returns a probe for service ("" for the whole server) at addr.
func NewHealthProbe(addr, service string) (*HealthProbe, error) {
	conn, err := Dial(addr, nil)
	if err != nil {
		return nil, err
	}
	return &HealthProbe{conn: conn, service: service, timeout: 2 * time.Second}, nil
}

// Check fits runtime.ReadyCheck.
func (p *HealthProbe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := healthpb.NewHealthClient(p.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return err
	}
	if status := resp.GetStatus(); status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s reports %s", p.conn.Target(), status)
	}
	return nil
}

func (p *HealthProbe) Close() error { return p.conn.Close() }
