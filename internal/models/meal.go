package models

// Meal: меню на конкретную дату.
type Meal struct {
	Date string `json:"date"`
	Menu string `json:"menu"`
}

// DummyMeal используется для приёма меню из JSON-запроса.
type DummyMeal struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Menu string `json:"menu" validate:"required"`
}

// DummyMessage используется для приёма текста уведомления из JSON-запроса.
type DummyMessage struct {
	Message string `json:"message" validate:"required"`
}
