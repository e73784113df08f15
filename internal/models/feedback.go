package models

import "time"

// Статусы обратной связи.
const (
	FeedbackNew      = "new"
	FeedbackReviewed = "reviewed"
	FeedbackResolved = "resolved"
)

// FeedbackCategories перечисляет допустимые темы обратной связи.
var FeedbackCategories = []string{"food_quality", "service", "app_experience", "delivery", "other"}

// MaxCommentLength: максимальная длина комментария.
const MaxCommentLength = 500

// Feedback: отзыв пользователя и ответ администратора.
type Feedback struct {
	ID            string     `json:"id"`
	UserUID       string     `json:"user_uid"`
	UserName      string     `json:"user_name"`
	UserCategory  Category   `json:"user_category"`
	Category      string     `json:"category"`
	Comment       string     `json:"comment"`
	CreatedAt     time.Time  `json:"created_at"`
	Status        string     `json:"status"`
	AdminResponse *string    `json:"admin_response"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

// FeedbackStats: количество отзывов по статусам.
type FeedbackStats struct {
	All      int `json:"all"`
	New      int `json:"new"`
	Reviewed int `json:"reviewed"`
	Resolved int `json:"resolved"`
}

// DummyFeedback используется для приёма отзыва из JSON-запроса.
type DummyFeedback struct {
	Category string `json:"category" validate:"required,oneof=food_quality service app_experience delivery other"`
	Comment  string `json:"comment" validate:"max=500"`
}

// DummyResponse используется для приёма ответа администратора.
type DummyResponse struct {
	Response string `json:"response"`
}

// BlacklistEntry: запись о блокировке обратной связи пользователя.
type BlacklistEntry struct {
	UserUID       string    `json:"user_uid"`
	UserName      string    `json:"user_name"`
	Reason        string    `json:"reason"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
}
