package rabbitmq

import "github.com/magabrotheeeer/foodtrack/internal/models"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очереди уведомлений.
const (
	AdminQueue = "notifications.admin"
	UsersQueue = "notifications.users"
)

// GetNotificationQueues возвращает очереди для чатов администратора и пользователей.
// Ключ маршрутизации совпадает с каналом уведомления.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: AdminQueue, RoutingKey: models.ChannelAdmin},
		{QueueName: UsersQueue, RoutingKey: models.ChannelUsers},
	}
}
