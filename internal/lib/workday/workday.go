// Package workday содержит чистые функции работы с календарём:
// рабочие дни месяца, выходные, разбор и форматирование дат в формате YYYY-MM-DD.
package workday

import (
	"fmt"
	"time"
)

// Layout: формат даты, используемый во всех ключах бронирований.
const Layout = "2006-01-02"

// Day возвращает полночь дня t в его же локации.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate разбирает дату YYYY-MM-DD в полночь указанной локации.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	const op = "workday.ParseDate"
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// FormatDate форматирует дату в YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(Layout)
}

// IsWeekend сообщает, приходится ли дата на субботу или воскресенье.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// StartOfMonth возвращает первый день месяца.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth возвращает последний день месяца (полночь).
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// SameMonth сообщает, относятся ли даты к одному календарному месяцу.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// NextDay возвращает следующий календарный день и признак того, что он будний.
func NextDay(t time.Time) (time.Time, bool) {
	next := Day(t).AddDate(0, 0, 1)
	return next, !IsWeekend(next)
}

// NextWorkingDay возвращает ближайший будний день после t.
func NextWorkingDay(t time.Time) time.Time {
	next, weekday := NextDay(t)
	for !weekday {
		next, weekday = NextDay(next)
	}
	return next
}

// WorkingDays возвращает рабочие дни (пн–пт) месяца month начиная со start включительно.
// Для текущего месяца (относительно today) диапазон обрезается по today.
// Если start == nil, пользователь ещё не подключён и результат пустой.
// Из start берётся только календарная дата, его локация не учитывается.
func WorkingDays(start *time.Time, month, today time.Time) []string {
	if start == nil {
		return []string{}
	}

	from := StartOfMonth(month)
	to := EndOfMonth(month)
	if SameMonth(month, today) {
		to = Day(today)
	}
	y, m, d := start.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, month.Location())

	days := make([]string, 0, 23)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Before(first) || IsWeekend(d) {
			continue
		}
		days = append(days, FormatDate(d))
	}
	return days
}
