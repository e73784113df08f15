// Package accounting реализует учёт доставок: разрешение статуса даты
// по трём слоям переопределений и агрегацию месячных итогов и дневной статистики.
// Все функции чистые и детерминированные.
package accounting

import "github.com/magabrotheeeer/foodtrack/internal/models"

// DailyRate: стоимость одного рабочего дня доставки.
const DailyRate = 50

// Resolve возвращает итоговый статус даты для пользователя.
// Общая отмена администратора имеет приоритет над переопределением пользователя;
// Confirmed и отсутствие записи одинаково дают StatusActive.
func Resolve(date string, overrides models.OverrideSet, global models.GlobalCancellations) models.Status {
	if global[date] == models.StateCancelled {
		return models.StatusCancelled
	}
	if overrides[date] == models.StateCancelled {
		return models.StatusCancelled
	}
	return models.StatusActive
}

// Amount возвращает сумму к оплате за count рабочих дней.
func Amount(count int) int {
	return count * DailyRate
}
