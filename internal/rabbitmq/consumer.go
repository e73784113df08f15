package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
)

// prefetch ограничивает число неподтверждённых сообщений, которые брокер отдаёт одному каналу.
const prefetch = 10

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает обработку очереди queueName в фоне и сразу возвращается.
// Одновременно обрабатывается не больше prefetch сообщений. Сообщение, которое
// не удалось обработать, возвращается в очередь один раз, после повторной
// неудачи оно уходит в DeadQueue, если очередь объявлена через SetupChannel.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler Handler, logger *slog.Logger) error {
	const op = "rabbitmq.ConsumerMessage"

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log := logger.With(slog.String("queue", queueName))
	sem := make(chan struct{}, prefetch)
	go func() {
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					settle(log, d, handler(ctx, d.Body))
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func settle(log *slog.Logger, d amqp.Delivery, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !d.Redelivered
	if requeue {
		log.Warn("message handling failed, requeue", sl.Err(err))
	} else {
		log.Error("message handling failed again, dead-lettering", sl.Err(err))
	}
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
