// Package sender собирает приложение доставки уведомлений из RabbitMQ в чаты.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodtrack/internal/config"
	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/foodtrack/internal/services/sender"
	"github.com/magabrotheeeer/foodtrack/internal/webhook"
)

// App читает очереди уведомлений и отдаёт метрики доставки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	metricsServer *http.Server
	logger        *slog.Logger
}

// New подключается к RabbitMQ и создаёт сервис доставки.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	client := webhook.NewClient(cfg.WebhookTimeout)
	senderService := senderservice.NewSenderService(cfg.Webhooks, client, m, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		metricsServer: &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Run запускает потребителей обеих очередей и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	for _, queue := range []string{rabbitmq.AdminQueue, rabbitmq.UsersQueue} {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, queue, a.senderService.Deliver, a.logger); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", queue), sl.Err(err))
			a.close()
			return err
		}
	}

	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
