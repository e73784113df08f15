// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
	GRPCHealthAddress       string `yaml:"grpc_health_address" env:"GRPC_HEALTH_ADDRESS" env-default:":50051"`
	MetricsAddress          string `yaml:"metrics_address" env:"METRICS_ADDRESS" env-default:":9102"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Webhooks                `yaml:"webhooks"`
	Policy                  `yaml:"policy"`
	Scheduler               `yaml:"scheduler"`
	Admin                   `yaml:"admin"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env-default:"10"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env-default:"20"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// RabbitMQ настройки подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"10"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// Webhooks адреса чатов, в которые уходят уведомления
type Webhooks struct {
	AdminWebhookURL string        `yaml:"admin_url" env:"ADMIN_WEBHOOK_URL"`
	UsersWebhookURL string        `yaml:"users_url" env:"USERS_WEBHOOK_URL"`
	WebhookTimeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

// Policy временные правила и параметры бронирования
type Policy struct {
	Timezone        string `yaml:"timezone" env:"TIMEZONE" env-default:"Asia/Kolkata"`
	Cutoff          string `yaml:"cutoff" env-default:"07:30"`
	CategoryEditsAt string `yaml:"category_edits_from" env-default:"14:30"`
	BulkConcurrency int    `yaml:"bulk_concurrency" env-default:"8"`
}

// Scheduler расписание ежедневной сводки
type Scheduler struct {
	DigestSpec string `yaml:"digest_spec" env:"DIGEST_SPEC" env-default:"0 18 * * 1-5"`
}

// Admin учётная запись администратора, создаваемая при первом запуске
type Admin struct {
	AdminEmail    string `yaml:"email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"password" env:"ADMIN_PASSWORD"`
	AdminName     string `yaml:"name" env-default:"Admin"`
}

// MustLoad функция для загрузки конфига из файла, путь к которому лежит в CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"GRPCHealthAddress: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  CacheTTL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RabbitMQ:\n"+
			"  MaxRetries: %d\n"+
			"  RetryDelay: %s\n"+
			"Policy:\n"+
			"  Timezone: %s\n"+
			"  Cutoff: %s\n"+
			"  CategoryEditsAt: %s\n"+
			"Scheduler:\n"+
			"  DigestSpec: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.GRPCHealthAddress,
		c.AddressRedis,
		c.DB,
		c.RedisConnection.MaxRetries,
		c.CacheTTL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.RabbitMQMaxRetries,
		c.RabbitMQRetryDelay,
		c.Timezone,
		c.Cutoff,
		c.CategoryEditsAt,
		c.DigestSpec,
	)
}
