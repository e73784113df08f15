package foodtrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/foodtrack/internal/cache"
	"github.com/magabrotheeeer/foodtrack/internal/config"
	grpcserver "github.com/magabrotheeeer/foodtrack/internal/grpc/server"
	"github.com/magabrotheeeer/foodtrack/internal/lib/jwt"
	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/migrations"
	"github.com/magabrotheeeer/foodtrack/internal/rabbitmq"
	"github.com/magabrotheeeer/foodtrack/internal/services/account"
	"github.com/magabrotheeeer/foodtrack/internal/services/auth"
	"github.com/magabrotheeeer/foodtrack/internal/services/booking"
	"github.com/magabrotheeeer/foodtrack/internal/services/dashboard"
	"github.com/magabrotheeeer/foodtrack/internal/services/feedback"
	"github.com/magabrotheeeer/foodtrack/internal/services/menu"
	"github.com/magabrotheeeer/foodtrack/internal/services/notification"
	"github.com/magabrotheeeer/foodtrack/internal/storage/repository"
)

const healthInterval = 10 * time.Second

// App: HTTP API FoodTrack и gRPC-сервер проверки здоровья.
type App struct {
	server     *http.Server
	grpcServer *grpc.Server
	grpcAddr   string
	health     *grpcserver.HealthServer
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// New создаёт приложение: подключается к базе, Redis и RabbitMQ, применяет миграции
// и собирает сервисы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	p, err := policy.Load(cfg.Timezone, cfg.Cutoff, cfg.CategoryEditsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	notifier := notification.New(rabbitmq.NewPublisher(ch), logger)

	authService := auth.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger)
	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			logger.Error("failed to create admin account", sl.Err(err))
		}
	}

	menuService := menu.New(db, cacheRedis, logger)
	bookingService := booking.New(db, notifier, p, m, logger,
		booking.WithCache(cacheRedis),
		booking.WithMenu(menuService),
		booking.WithConcurrency(cfg.BulkConcurrency),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:       authService,
		Booking:    bookingService,
		Account:    account.New(db, p, logger, nil),
		Reporter:   dashboard.New(db, bookingService, p, logger, nil),
		Deliveries: bookingService,
		Notifier:   notifier,
		Menu:       menuService,
		Feedback:   feedback.New(db, notifier, m, logger, nil),
		Pinger:     db,
	}, RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	healthServer := grpcserver.NewHealthServer(db, logger)
	grpcServer := grpc.NewServer()
	healthServer.Register(grpcServer)

	return &App{
		server:     srv,
		grpcServer: grpcServer,
		grpcAddr:   cfg.GRPCHealthAddress,
		health:     healthServer,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		conn:       conn,
		ch:         ch,
	}, nil
}

// Run запускает HTTP и gRPC серверы и останавливает их по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.grpcAddr)
	if err != nil {
		a.close()
		return fmt.Errorf("failed to listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Info("gRPC health server starting on", slog.String("address", a.grpcAddr))
		return a.grpcServer.Serve(lis)
	})

	g.Go(func() error {
		a.health.Watch(gctx, healthInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.grpcServer.GracefulStop()
		return err
	})

	err = g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
