package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// maxRangeDays ограничивает длину диапазона отмены.
const maxRangeDays = 62

// Cancel отменяет доставку пользователю на дату.
// Выходные, прошедший крайний срок и заблокированная учётная запись дают ErrPolicyViolation.
func (s *Service) Cancel(ctx context.Context, userUID, date string) error {
	const op = "booking.Cancel"

	d, err := s.parseDate(date)
	if err != nil {
		return err
	}
	user, err := s.getUser(ctx, op, userUID)
	if err != nil {
		return err
	}
	if user.Locked {
		return apperr.Policy("account is locked")
	}
	if workday.IsWeekend(d) {
		return apperr.Policy("%s is a weekend", date)
	}
	if s.policy.CutoffPassed(d, s.now()) {
		return apperr.Policy("cancellation deadline for %s has passed", date)
	}

	if err := s.store.SetOverrides(ctx, user.UUID, models.OverrideSet{date: models.StateCancelled}); err != nil {
		return apperr.Store(op, err)
	}
	s.metrics.CancellationDone("cancel")
	s.log.Info("delivery cancelled", slog.String("user_uid", user.UUID), slog.String("date", date))

	s.notify(ctx, CancelMessage(user.DisplayName(), date))
	return nil
}

// CancelRange отменяет все будние дни диапазона [from, to], для которых крайний срок не истёк.
// Возвращает отменённые даты.
func (s *Service) CancelRange(ctx context.Context, userUID, from, to string) ([]string, error) {
	const op = "booking.CancelRange"

	start, err := s.parseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperr.Validation("range end %s is before start %s", to, from)
	}
	if end.Sub(start).Hours()/24 > maxRangeDays {
		return nil, apperr.Validation("range is longer than %d days", maxRangeDays)
	}
	user, err := s.getUser(ctx, op, userUID)
	if err != nil {
		return nil, err
	}
	if user.Locked {
		return nil, apperr.Policy("account is locked")
	}

	now := s.now()
	overrides := models.OverrideSet{}
	dates := make([]string, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !s.policy.CanCancel(d, now) {
			continue
		}
		date := workday.FormatDate(d)
		overrides[date] = models.StateCancelled
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return nil, apperr.Policy("no valid future dates selected")
	}

	if err := s.store.SetOverrides(ctx, user.UUID, overrides); err != nil {
		return nil, apperr.Store(op, err)
	}
	s.log.Info("delivery range cancelled", slog.String("user_uid", user.UUID), slog.Int("count", len(dates)))

	for _, date := range dates {
		s.metrics.CancellationDone("cancel")
		s.notify(ctx, CancelMessage(user.DisplayName(), date))
	}
	return dates, nil
}

// UndoCancel возвращает доставку, отменённую самим пользователем.
// Общие отмены администратора пользователь вернуть не может.
func (s *Service) UndoCancel(ctx context.Context, userUID, date string) error {
	const op = "booking.UndoCancel"

	d, err := s.parseDate(date)
	if err != nil {
		return err
	}
	user, err := s.getUser(ctx, op, userUID)
	if err != nil {
		return err
	}
	if user.Locked {
		return apperr.Policy("account is locked")
	}
	if s.policy.CutoffPassed(d, s.now()) {
		return apperr.Policy("deadline for %s has passed", date)
	}
	global, err := s.ReloadGlobalCancellations(ctx)
	if err != nil {
		return err
	}
	if global[date] == models.StateCancelled {
		return apperr.Policy("delivery for %s was cancelled by admin", date)
	}
	overrides, err := s.store.GetOverrides(ctx, user.UUID)
	if err != nil {
		return apperr.Store(op, err)
	}
	if overrides[date] != models.StateCancelled {
		return apperr.Validation("delivery for %s is not cancelled", date)
	}

	if err := s.store.DeleteOverride(ctx, user.UUID, date); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("delivery for %s is not cancelled", date)
		}
		return apperr.Store(op, err)
	}
	s.metrics.CancellationDone("undo")
	s.log.Info("cancellation undone", slog.String("user_uid", user.UUID), slog.String("date", date))

	s.notify(ctx, UndoMessage(user.DisplayName(), date))
	return nil
}

// BulkNotDelivered отмечает дату как недоставленную для всех пользователей
// и записывает общую отмену. Записи по пользователям выполняются параллельно
// и не откатываются при частичной ошибке. Повторный вызов ничего не меняет.
func (s *Service) BulkNotDelivered(ctx context.Context, date string) (int, error) {
	const op = "booking.BulkNotDelivered"

	d, err := s.parseDate(date)
	if err != nil {
		return 0, err
	}
	if workday.IsWeekend(d) {
		return 0, apperr.Policy("%s is a weekend", date)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, apperr.Store(op, err)
	}

	var written atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		uid := u.UUID
		g.Go(func() error {
			err := s.store.SetOverrides(ctx, uid, models.OverrideSet{date: models.StateCancelled})
			s.metrics.BulkWrite(err == nil)
			if err != nil {
				s.log.Error("bulk write failed", slog.String("user_uid", uid), slog.String("date", date), sl.Err(err))
				return fmt.Errorf("user %s: %w", uid, err)
			}
			written.Add(1)
			return nil
		})
	}
	usersErr := g.Wait()

	globalErr := s.store.SetGlobalCancellations(ctx, models.GlobalCancellations{date: models.StateCancelled})
	s.invalidateGlobal(ctx)

	if err := errors.Join(usersErr, globalErr); err != nil {
		return int(written.Load()), apperr.Store(op, err)
	}
	s.log.Info("date marked not delivered", slog.String("date", date), slog.Int64("users", written.Load()))
	return int(written.Load()), nil
}

// MarkDelivered явно подтверждает доставку пользователю на дату.
func (s *Service) MarkDelivered(ctx context.Context, userUID, date string) error {
	const op = "booking.MarkDelivered"

	d, err := s.parseDate(date)
	if err != nil {
		return err
	}
	if workday.IsWeekend(d) {
		return apperr.Policy("%s is a weekend", date)
	}
	user, err := s.getUser(ctx, op, userUID)
	if err != nil {
		return err
	}
	if err := s.store.SetOverrides(ctx, user.UUID, models.OverrideSet{date: models.StateConfirmed}); err != nil {
		return apperr.Store(op, err)
	}
	s.metrics.CancellationDone("confirm")
	return nil
}
