package accounting

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Input содержит всё, от чего зависит отчёт. Скрытого состояния нет.
type Input struct {
	Users        []models.UserBookings
	Global       models.GlobalCancellations
	Month        time.Time
	Today        time.Time
	SelectedDate string
}

// Aggregate строит отчёт администратора за месяц и выбранную дату.
func Aggregate(in Input) models.Report {
	users := make([]models.UserBookings, 0, len(in.Users))
	for _, ub := range in.Users {
		if ub.User.IsAdmin() {
			continue
		}
		users = append(users, ub)
	}
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i].User, users[j].User
		if a.DisplayName() != b.DisplayName() {
			return a.DisplayName() < b.DisplayName()
		}
		return a.UUID < b.UUID
	})

	report := models.Report{
		Month:        in.Month.Format("2006-01"),
		SelectedDate: in.SelectedDate,
		UserCount:    len(users),
		Users:        make([]models.UserSummary, 0, len(users)),
		DailyStats:   map[string]models.DailyStat{},
		Skipped:      map[models.Category][]string{},
	}
	for _, c := range models.Categories {
		report.Skipped[c] = []string{}
	}

	missing := map[string]struct{}{}

	for _, ub := range users {
		u := ub.User
		count := 0
		for _, d := range workday.WorkingDays(u.StartDate, in.Month, in.Today) {
			if Resolve(d, ub.Overrides, in.Global) == models.StatusActive {
				count++
				continue
			}
			missing[d] = struct{}{}
		}

		if in.SelectedDate != "" {
			if ub.Overrides[in.SelectedDate] == models.StateCancelled {
				c := u.Category.Normalize()
				report.Skipped[c] = append(report.Skipped[c], u.DisplayName())
			}
		}

		summary := models.UserSummary{
			UUID:     u.UUID,
			Name:     u.DisplayName(),
			Category: u.Category,
			Count:    count,
			Amount:   Amount(count),
			Locked:   u.Locked,
		}
		if u.StartDate != nil {
			summary.StartDate = workday.FormatDate(*u.StartDate)
		}
		report.Users = append(report.Users, summary)
		report.TotalCount += count
	}

	if in.SelectedDate != "" {
		report.DailyStats[in.SelectedDate] = Daily(in.SelectedDate, users, in.Global)
	}
	report.TotalAmount = Amount(report.TotalCount)
	report.MissingDates = missingDates(missing, in.Today)
	return report
}

// Daily считает активные доставки на date по категориям. Администраторы не учитываются.
// Выходной день, некорректная дата и пользователи, не подключённые к date, дают ноль.
func Daily(date string, users []models.UserBookings, global models.GlobalCancellations) models.DailyStat {
	var stat models.DailyStat
	d, err := workday.ParseDate(date, time.UTC)
	if err != nil || workday.IsWeekend(d) {
		return stat
	}
	for _, ub := range users {
		if ub.User.IsAdmin() || !activeFrom(ub.User.StartDate, date) {
			continue
		}
		if Resolve(date, ub.Overrides, global) == models.StatusActive {
			stat.Add(ub.User.Category)
		}
	}
	return stat
}

// activeFrom сообщает, подключён ли пользователь с датой start к дате date.
// Как и в WorkingDays, берётся только календарная дата start.
func activeFrom(start *time.Time, date string) bool {
	if start == nil {
		return false
	}
	y, m, d := start.Date()
	return workday.FormatDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) <= date
}

// missingDates возвращает отсортированные будние даты отмен и следующий будний день после today.
func missingDates(set map[string]struct{}, today time.Time) []string {
	if next, weekday := workday.NextDay(today); weekday {
		set[workday.FormatDate(next)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
