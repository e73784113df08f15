package models

// DeliveryState: явное состояние записи бронирования пользователя на дату.
// Отсутствие записи (StateAbsent) означает состояние по умолчанию.
type DeliveryState string

const (
	StateAbsent    DeliveryState = ""
	StateCancelled DeliveryState = "cancelled"
	StateConfirmed DeliveryState = "confirmed"
)

// Status: итоговый статус доставки на дату после применения всех переопределений.
type Status int

const (
	StatusActive Status = iota
	StatusCancelled
)

func (s Status) String() string {
	if s == StatusCancelled {
		return "cancelled"
	}
	return "active"
}

// OverrideSet: переопределения одного пользователя: дата YYYY-MM-DD → состояние.
type OverrideSet map[string]DeliveryState

// GlobalCancellations: общие отмены администратора: дата YYYY-MM-DD → состояние.
type GlobalCancellations map[string]DeliveryState

// DummyDate используется для приёма одной даты из JSON-запроса.
type DummyDate struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// DummyRange используется для приёма диапазона дат из JSON-запроса.
type DummyRange struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// UpcomingCancellation: будущая отмена пользователя для отображения на главной странице.
type UpcomingCancellation struct {
	Date           string `json:"date"`
	AdminCancelled bool   `json:"admin_cancelled"`
}

// Summary: сводка пользователя за текущий месяц.
type Summary struct {
	Name            string                 `json:"name"`
	Category        Category               `json:"category"`
	Locked          bool                   `json:"locked"`
	BookedDays      int                    `json:"booked_days"`
	Amount          int                    `json:"amount"`
	TodayMessage    string                 `json:"today_message,omitempty"`
	CancelTarget    string                 `json:"cancel_target"`
	CanCancelTarget bool                   `json:"can_cancel_target"`
	CanEditCategory bool                   `json:"can_edit_category"`
	Upcoming        []UpcomingCancellation `json:"upcoming"`
	Menu            string                 `json:"menu,omitempty"`
}

// DayMarker: отметка дня в календаре пользователя.
type DayMarker string

const (
	MarkerNone      DayMarker = "none"
	MarkerBooked    DayMarker = "booked"
	MarkerUpcoming  DayMarker = "upcoming"
	MarkerCancelled DayMarker = "cancelled"
)

// CalendarDay: один день календаря текущего месяца.
type CalendarDay struct {
	Date   string    `json:"date"`
	Marker DayMarker `json:"marker"`
}
