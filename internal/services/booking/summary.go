package booking

import (
	"context"
	"errors"
	"sort"

	"github.com/magabrotheeeer/foodtrack/internal/lib/accounting"
	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Тексты сообщения о сегодняшней доставке.
const (
	MessageAdminCancelled = "Food was not delivered today"
	MessageSelfCancelled  = "You have cancelled today's food"
)

// Summary возвращает сводку пользователя за текущий месяц.
func (s *Service) Summary(ctx context.Context, userUID string) (*models.Summary, error) {
	const op = "booking.Summary"

	user, err := s.getUser(ctx, op, userUID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.store.GetOverrides(ctx, user.UUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	global, err := s.GlobalCancellations(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := s.policy.Today(now)
	todayKey := workday.FormatDate(today)
	target := s.policy.CancelTarget(now)

	booked := accounting.BookedDays(user.StartDate, overrides, global, today)
	summary := &models.Summary{
		Name:            user.DisplayName(),
		Category:        user.Category.Normalize(),
		Locked:          user.Locked,
		BookedDays:      booked,
		Amount:          accounting.Amount(booked),
		CancelTarget:    workday.FormatDate(target),
		CanCancelTarget: !user.Locked && s.policy.CanCancel(target, now),
		CanEditCategory: s.policy.CanEditCategory(now),
		Upcoming:        upcoming(overrides, global, todayKey),
	}
	switch {
	case global[todayKey] == models.StateCancelled:
		summary.TodayMessage = MessageAdminCancelled
	case overrides[todayKey] == models.StateCancelled:
		summary.TodayMessage = MessageSelfCancelled
	}

	if s.menu != nil {
		meal, err := s.menu.GetMenu(ctx, todayKey)
		switch {
		case err == nil:
			summary.Menu = meal.Menu
		case !errors.Is(err, apperr.ErrNotFound):
			s.log.Warn("failed to load today's menu", sl.Err(err))
		}
	}
	return summary, nil
}

// upcoming возвращает отменённые даты после today: свои и общие, по возрастанию.
func upcoming(overrides models.OverrideSet, global models.GlobalCancellations, today string) []models.UpcomingCancellation {
	dates := map[string]bool{}
	for d, st := range overrides {
		if st == models.StateCancelled && d > today {
			dates[d] = false
		}
	}
	for d, st := range global {
		if st == models.StateCancelled && d > today {
			dates[d] = true
		}
	}

	out := make([]models.UpcomingCancellation, 0, len(dates))
	for d, admin := range dates {
		out = append(out, models.UpcomingCancellation{Date: d, AdminCancelled: admin})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Calendar возвращает разметку текущего месяца для пользователя.
func (s *Service) Calendar(ctx context.Context, userUID string) ([]models.CalendarDay, error) {
	const op = "booking.Calendar"

	user, err := s.getUser(ctx, op, userUID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.store.GetOverrides(ctx, user.UUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	global, err := s.GlobalCancellations(ctx)
	if err != nil {
		return nil, err
	}
	return accounting.Calendar(overrides, global, s.policy.Today(s.now())), nil
}
