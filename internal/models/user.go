// Package models содержит доменные структуры FoodTrack: пользователей,
// состояния бронирований, агрегированные отчёты, меню и обратную связь.
// Структуры используются в бизнес‑логике, хранилище и HTTP‑слое.
package models

import "time"

// Category: размер порции пользователя.
type Category string

const (
	CategorySmall  Category = "small"
	CategoryMedium Category = "medium"
	CategoryLarge  Category = "large"
)

// Categories перечисляет допустимые категории в порядке вывода.
var Categories = []Category{CategorySmall, CategoryMedium, CategoryLarge}

// Normalize возвращает категорию или medium, если значение не распознано.
func (c Category) Normalize() Category {
	switch c {
	case CategorySmall, CategoryMedium, CategoryLarge:
		return c
	default:
		return CategoryMedium
	}
}

// Valid сообщает, является ли значение одной из известных категорий.
func (c Category) Valid() bool {
	return c == CategorySmall || c == CategoryMedium || c == CategoryLarge
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string     `json:"uid"`        // Уникальный идентификатор пользователя
	Name         string     `json:"name"`       // Отображаемое имя
	Email        string     `json:"email"`      // Электронная почта
	PasswordHash string     `json:"-"`          // Хэш пароля пользователя
	Category     Category   `json:"category"`   // Размер порции
	Locked       bool       `json:"locked"`     // Заблокирован до одобрения администратором
	StartDate    *time.Time `json:"start_date"` // Дата подключения, nil если ещё не подключён
	Role         string     `json:"role"`       // Роль пользователя, admin или user
}

// DisplayName возвращает имя пользователя, а при его отсутствии email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity: аутентифицированный пользователь запроса, извлекается из токена.
type Identity struct {
	UserUID string
	Role    string
	Name    string
}

// IsAdmin сообщает, выполняет ли запрос администратор.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserPatch описывает частичное обновление пользователя; nil-поля не меняются.
type UserPatch struct {
	Category   *Category
	StartDate  *time.Time
	ClearStart bool
	Locked     *bool
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Category string `json:"category" validate:"omitempty,oneof=small medium large"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyUserUpdate используется для приёма изменений пользователя администратором.
type DummyUserUpdate struct {
	Category  *string `json:"category,omitempty" validate:"omitempty,oneof=small medium large"`
	StartDate *string `json:"start_date,omitempty" validate:"omitempty"`
}

// DummyCategory используется для смены категории самим пользователем.
type DummyCategory struct {
	Category string `json:"category" validate:"required,oneof=small medium large"`
}
