package models

import "time"

// Каналы доставки уведомлений.
const (
	ChannelAdmin = "admin"
	ChannelUsers = "users"
)

// Notification: сообщение, публикуемое в очередь и доставляемое в чат.
type Notification struct {
	Channel   string    `json:"channel"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
