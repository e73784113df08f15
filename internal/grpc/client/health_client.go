// Package client содержит gRPC-клиент проверки здоровья сервиса.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient опрашивает grpc.health.v1.
type HealthClient struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewHealthClient создает клиента к addr. Соединение устанавливается при первом вызове.
func NewHealthClient(addr string, opts ...grpc.DialOption) (*HealthClient, error) {
	const op = "client.NewHealthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &HealthClient{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Close закрывает соединение.
func (c *HealthClient) Close() error {
	return c.conn.Close()
}

// Serving сообщает, отвечает ли сервис service статусом SERVING.
func (c *HealthClient) Serving(ctx context.Context, service string) (bool, error) {
	const op = "client.Serving"
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}
