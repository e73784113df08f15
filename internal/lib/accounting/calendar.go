package accounting

import (
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// BookedDays возвращает количество активных рабочих дней пользователя в месяце today.
func BookedDays(start *time.Time, overrides models.OverrideSet, global models.GlobalCancellations, today time.Time) int {
	count := 0
	for _, d := range workday.WorkingDays(start, today, today) {
		if Resolve(d, overrides, global) == models.StatusActive {
			count++
		}
	}
	return count
}

// Calendar размечает каждый день месяца today для календаря пользователя.
func Calendar(overrides models.OverrideSet, global models.GlobalCancellations, today time.Time) []models.CalendarDay {
	today = workday.Day(today)
	from := workday.StartOfMonth(today)
	to := workday.EndOfMonth(today)

	days := make([]models.CalendarDay, 0, 31)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := workday.FormatDate(d)
		marker := models.MarkerBooked
		switch {
		case Resolve(date, overrides, global) == models.StatusCancelled:
			marker = models.MarkerCancelled
		case workday.IsWeekend(d):
			marker = models.MarkerNone
		case d.After(today):
			marker = models.MarkerUpcoming
		}
		days = append(days, models.CalendarDay{Date: date, Marker: marker})
	}
	return days
}
