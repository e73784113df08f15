// Package sender доставляет уведомления из очередей RabbitMQ в чаты через вебхуки.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/foodtrack/internal/config"
	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Transport отправляет текст на адрес вебхука.
type Transport interface {
	Send(ctx context.Context, url, text string) error
}

// SenderService доставляет уведомления в чаты.
type SenderService struct {
	transport Transport
	urls      map[string]string
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(cfg config.Webhooks, transport Transport, m *metrics.Metrics, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		urls: map[string]string{
			models.ChannelAdmin: cfg.AdminWebhookURL,
			models.ChannelUsers: cfg.UsersWebhookURL,
		},
		metrics: m,
		log:     log,
	}
}

// Deliver обрабатывает тело сообщения из очереди. Ошибка доставки возвращается,
// чтобы сообщение вернулось в очередь. Нечитаемые сообщения и сообщения
// для неизвестных или ненастроенных чатов отбрасываются.
func (s *SenderService) Deliver(ctx context.Context, body []byte) error {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.Error("failed to unmarshal notification, dropping", sl.Err(err))
		return nil
	}

	url := s.urls[n.Channel]
	if url == "" {
		s.log.Warn("no webhook configured for channel, dropping", slog.String("channel", n.Channel))
		return nil
	}

	if err := s.transport.Send(ctx, url, n.Text); err != nil {
		s.metrics.Notification("delivered", false)
		s.log.Error("failed to deliver notification", slog.String("channel", n.Channel), sl.Err(err))
		return fmt.Errorf("deliver to %s: %w", n.Channel, err)
	}
	s.metrics.Notification("delivered", true)
	s.log.Info("notification delivered", slog.String("channel", n.Channel))
	return nil
}
