// Package notification публикует уведомления в очередь RabbitMQ.
// Доставку в чаты выполняет отдельный процесс notification-sender.
package notification

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service публикует уведомления администратору и пользователям.
type Service struct {
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт Service.
func New(publisher Publisher, log *slog.Logger) *Service {
	return &Service{publisher: publisher, log: log, now: time.Now}
}

// Notify отправляет сообщение в чат администратора.
func (s *Service) Notify(ctx context.Context, message string) error {
	return s.publish(ctx, "notification.Notify", models.ChannelAdmin, message)
}

// Broadcast отправляет сообщение в общий чат пользователей.
func (s *Service) Broadcast(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return apperr.Validation("message must not be empty")
	}
	if err := s.publish(ctx, "notification.Broadcast", models.ChannelUsers, message); err != nil {
		return err
	}
	s.log.Info("broadcast published", slog.Int("length", len(message)))
	return nil
}

func (s *Service) publish(ctx context.Context, op, channel, text string) error {
	n := models.Notification{Channel: channel, Text: text, CreatedAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, channel, n); err != nil {
		return apperr.Store(op, err)
	}
	return nil
}
