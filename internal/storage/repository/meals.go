package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// SetMeal сохраняет меню на дату, перезаписывая прежнее.
func (s *Storage) SetMeal(ctx context.Context, meal models.Meal) error {
	const op = "storage.SetMeal"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO meals (date, menu)
			  VALUES ($1::date, $2)
			  ON CONFLICT (date)
			  DO UPDATE SET menu = EXCLUDED.menu, updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, meal.Date, meal.Menu); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetMeal возвращает меню на дату.
func (s *Storage) GetMeal(ctx context.Context, date string) (*models.Meal, error) {
	const op = "storage.GetMeal"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var meal models.Meal
	query := `SELECT date::text, menu FROM meals WHERE date = $1::date`
	if err := s.DB.QueryRowContext(ctx, query, date).Scan(&meal.Date, &meal.Menu); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &meal, nil
}
