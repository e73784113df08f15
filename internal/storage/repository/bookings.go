package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// GetOverrides возвращает все переопределения пользователя.
func (s *Storage) GetOverrides(ctx context.Context, userUID string) (models.OverrideSet, error) {
	const op = "storage.GetOverrides"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT date::text, state FROM bookings WHERE user_uid = $1`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := models.OverrideSet{}
	for rows.Next() {
		var date string
		var state models.DeliveryState
		if err = rows.Scan(&date, &state); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[date] = state
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListOverrides возвращает переопределения всех пользователей в диапазоне дат [from, to].
func (s *Storage) ListOverrides(ctx context.Context, from, to string) (map[string]models.OverrideSet, error) {
	const op = "storage.ListOverrides"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid::text, date::text, state
			  FROM bookings
			  WHERE date BETWEEN $1::date AND $2::date`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := map[string]models.OverrideSet{}
	for rows.Next() {
		var uid, date string
		var state models.DeliveryState
		if err = rows.Scan(&uid, &date, &state); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if result[uid] == nil {
			result[uid] = models.OverrideSet{}
		}
		result[uid][date] = state
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetOverrides сливает overrides с уже сохранёнными: существующие даты перезаписываются.
func (s *Storage) SetOverrides(ctx context.Context, userUID string, overrides models.OverrideSet) error {
	const op = "storage.SetOverrides"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(overrides) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO bookings (user_uid, date, state)
			  VALUES ($1, $2::date, $3)
			  ON CONFLICT (user_uid, date)
			  DO UPDATE SET state = EXCLUDED.state, updated_at = now()`
	for date, state := range overrides {
		if _, err = tx.ExecContext(ctx, query, userUID, date, string(state)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteOverride удаляет переопределение пользователя на дату.
// Если записи не было, возвращает apperr.ErrNotFound.
func (s *Storage) DeleteOverride(ctx context.Context, userUID, date string) error {
	const op = "storage.DeleteOverride"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM bookings WHERE user_uid = $1 AND date = $2::date`, userUID, date)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

// GetGlobalCancellations возвращает все общие отмены.
func (s *Storage) GetGlobalCancellations(ctx context.Context) (models.GlobalCancellations, error) {
	const op = "storage.GetGlobalCancellations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT date::text, state FROM global_cancellations`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := models.GlobalCancellations{}
	for rows.Next() {
		var date string
		var state models.DeliveryState
		if err = rows.Scan(&date, &state); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[date] = state
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetGlobalCancellations сливает global с уже сохранёнными общими отменами.
func (s *Storage) SetGlobalCancellations(ctx context.Context, global models.GlobalCancellations) error {
	const op = "storage.SetGlobalCancellations"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(global) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO global_cancellations (date, state)
			  VALUES ($1::date, $2)
			  ON CONFLICT (date)
			  DO UPDATE SET state = EXCLUDED.state, updated_at = now()`
	for date, state := range global {
		if _, err = tx.ExecContext(ctx, query, date, string(state)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
