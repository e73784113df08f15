package models

// DailyStat: количество активных доставок на дату по категориям.
type DailyStat struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
	Total  int `json:"total"`
}

// Add учитывает одного пользователя категории c.
func (d *DailyStat) Add(c Category) {
	switch c.Normalize() {
	case CategorySmall:
		d.Small++
	case CategoryLarge:
		d.Large++
	default:
		d.Medium++
	}
	d.Total++
}

// UserBookings: пользователь вместе с его переопределениями, вход агрегации.
type UserBookings struct {
	User      User
	Overrides OverrideSet
}

// UserSummary: строка отчёта администратора по одному пользователю.
type UserSummary struct {
	UUID        string   `json:"uid"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Count       int      `json:"count"`
	Amount      int      `json:"amount"`
	Locked      bool     `json:"locked"`
	StartDate   string   `json:"start_date,omitempty"`
	Blacklisted bool     `json:"blacklisted"`
}

// Report: результат агрегации за месяц и выбранную дату.
type Report struct {
	Month        string                `json:"month"`
	SelectedDate string                `json:"selected_date"`
	UserCount    int                   `json:"user_count"`
	Users        []UserSummary         `json:"users"`
	DailyStats   map[string]DailyStat  `json:"daily_stats"`
	Skipped      map[Category][]string `json:"skipped"`
	TotalCount   int                   `json:"total_count"`
	TotalAmount  int                   `json:"total_amount"`
	MissingDates []string              `json:"missing_dates"`
}
