// Package menu хранит меню на дату и кэширует его в Redis.
package menu

import (
	"context"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/foodtrack/internal/cache"
	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Store: хранилище меню.
type Store interface {
	SetMeal(ctx context.Context, meal models.Meal) error
	GetMeal(ctx context.Context, date string) (*models.Meal, error)
}

// Cache: кэш меню.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service: работа с меню.
type Service struct {
	store Store
	cache Cache
	log   *slog.Logger
}

// New создаёт Service. cache может быть nil.
func New(store Store, c Cache, log *slog.Logger) *Service {
	return &Service{store: store, cache: c, log: log}
}

// SetMenu сохраняет меню на дату.
func (s *Service) SetMenu(ctx context.Context, date, menu string) (*models.Meal, error) {
	const op = "menu.SetMenu"

	menu = strings.TrimSpace(menu)
	if menu == "" {
		return nil, apperr.Validation("menu must not be empty")
	}
	if _, err := workday.ParseDate(date, nil); err != nil {
		return nil, apperr.Validation("invalid date %q", date)
	}

	meal := models.Meal{Date: date, Menu: menu}
	if err := s.store.SetMeal(ctx, meal); err != nil {
		return nil, apperr.Store(op, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cache.MenuKey(date)); err != nil {
			s.log.Warn("failed to invalidate menu cache", slog.String("date", date), sl.Err(err))
		}
	}
	s.log.Info("menu updated", slog.String("date", date))
	return &meal, nil
}

// GetMenu возвращает меню на дату. Если меню не задано, возвращается ErrNotFound.
func (s *Service) GetMenu(ctx context.Context, date string) (*models.Meal, error) {
	const op = "menu.GetMenu"

	if _, err := workday.ParseDate(date, nil); err != nil {
		return nil, apperr.Validation("invalid date %q", date)
	}

	key := cache.MenuKey(date)
	if s.cache != nil {
		var meal models.Meal
		found, err := s.cache.Get(ctx, key, &meal)
		if err != nil {
			s.log.Warn("failed to read menu from cache", slog.String("date", date), sl.Err(err))
		}
		if found {
			return &meal, nil
		}
	}

	meal, err := s.store.GetMeal(ctx, date)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, meal); err != nil {
			s.log.Warn("failed to cache menu", slog.String("date", date), sl.Err(err))
		}
	}
	return meal, nil
}
