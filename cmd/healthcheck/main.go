// Команда healthcheck опрашивает gRPC health-сервис FoodTrack и завершается
// с кодом 0, если сервис готов. Используется как проба контейнера.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/grpc/client"
	"github.com/magabrotheeeer/foodtrack/internal/grpc/server"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC health address")
	timeout := flag.Duration("timeout", 3*time.Second, "request timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	c, err := client.NewHealthClient(*addr)
	if err != nil {
		logger.Error("failed to create health client", sl.Err(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	ok, err := c.Serving(ctx, server.ServiceName)
	cancel()
	_ = c.Close()

	if err != nil {
		logger.Error("health check failed", sl.Err(err))
		os.Exit(1)
	}
	if !ok {
		logger.Warn("service is not serving", slog.String("addr", *addr))
		os.Exit(1)
	}
}
