// Package scheduler собирает приложение планировщика ежедневной сводки заказов.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodtrack/internal/cache"
	"github.com/magabrotheeeer/foodtrack/internal/config"
	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/rabbitmq"
	"github.com/magabrotheeeer/foodtrack/internal/services/booking"
	"github.com/magabrotheeeer/foodtrack/internal/services/notification"
	schedulerservice "github.com/magabrotheeeer/foodtrack/internal/services/scheduler"
	"github.com/magabrotheeeer/foodtrack/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	spec             string
	db               *repository.Storage
	cache            *cache.Cache
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	p, err := policy.Load(cfg.Timezone, cfg.Cutoff, cfg.CategoryEditsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	notifier := notification.New(rabbitmq.NewPublisher(ch), logger)
	// Общие отмены читаются через сервис бронирований, чтобы использовать тот же кэш.
	bookings := booking.New(db, notifier, p, metrics.Noop(), logger, booking.WithCache(cacheRedis))
	schedulerService := schedulerservice.NewSchedulerService(db, bookings, notifier, p, logger)

	return &App{
		schedulerService: schedulerService,
		spec:             cfg.DigestSpec,
		db:               db,
		cache:            cacheRedis,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		_ = a.cache.Close()
		_ = a.db.Close()
		closeResources(a.ch, a.conn, a.logger)
	}()

	if err := a.schedulerService.Start(ctx, a.spec); err != nil {
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	a.schedulerService.Stop()
	return nil
}
