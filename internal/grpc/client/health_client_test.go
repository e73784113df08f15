package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/magabrotheeeer/foodtrack/internal/grpc/server"
)

type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) Ping(context.Context) error {
	if p.fail.Load() {
		return errors.New("database is down")
	}
	return nil
}

func startServer(t *testing.T, pinger server.Pinger) (*server.HealthServer, *HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	hs := server.NewHealthServer(pinger, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hs.Register(s)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewHealthClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return hs, c
}

func TestHealth_ReflectsDatabase(t *testing.T) {
	pinger := &fakePinger{}
	hs, c := startServer(t, pinger)
	ctx := context.Background()

	serving, err := c.Serving(ctx, server.ServiceName)
	require.NoError(t, err)
	assert.False(t, serving, "not serving before the first check")

	assert.True(t, hs.Check(ctx))
	serving, err = c.Serving(ctx, server.ServiceName)
	require.NoError(t, err)
	assert.True(t, serving)

	pinger.fail.Store(true)
	assert.False(t, hs.Check(ctx))
	serving, err = c.Serving(ctx, "")
	require.NoError(t, err)
	assert.False(t, serving)
}

func TestHealth_UnknownService(t *testing.T) {
	_, c := startServer(t, &fakePinger{})
	_, err := c.Serving(context.Background(), "payments")
	assert.Error(t, err)
}
