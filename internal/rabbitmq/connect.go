// Package rabbitmq содержит подключение к RabbitMQ, объявление очередей уведомлений,
// публикацию и потребление сообщений.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Обменники уведомлений. Сообщения, которые не удалось доставить повторно,
// уходят через DeadLetterExchange в очередь DeadQueue.
const (
	Exchange           = "notifications"
	DeadLetterExchange = "notifications.dlx"
	DeadQueue          = "notifications.dead"
)

const maxRetryDelay = 30 * time.Second

// Connect подключается к брокеру за retries попыток. Пауза начинается с delay
// и удваивается после каждой неудачи, но не превышает 30 секунд.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	if retries < 1 {
		retries = 1
	}
	var err error
	for attempt := 1; ; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		if attempt == retries {
			break
		}
		time.Sleep(delay)
		delay = min(delay*2, maxRetryDelay)
	}
	return nil, fmt.Errorf("%s: after %d attempts: %w", op, retries, err)
}

// SetupChannel открывает канал, объявляет обменники и привязывает очереди.
// Каждая очередь уведомлений пересылает отклонённые сообщения в DeadQueue.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := declare(ch, queues); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func declare(ch *amqp.Channel, queues []QueueConfig) error {
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	if err := ch.ExchangeDeclare(DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", DeadLetterExchange, err)
	}
	if _, err := ch.QueueDeclare(DeadQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", DeadQueue, err)
	}
	if err := ch.QueueBind(DeadQueue, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", DeadQueue, err)
	}

	args := amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s with routing key %s: %w", q.QueueName, q.RoutingKey, err)
		}
	}
	return nil
}
