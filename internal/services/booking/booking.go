// Package booking реализует изменения бронирований: отмену, отмену диапазона,
// возврат отмены, массовую отметку "не доставлено" и подтверждение доставки,
// а также сводку и календарь пользователя.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/cache"
	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Store: хранилище пользователей, переопределений и общих отмен.
type Store interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetOverrides(ctx context.Context, userUID string) (models.OverrideSet, error)
	SetOverrides(ctx context.Context, userUID string, overrides models.OverrideSet) error
	DeleteOverride(ctx context.Context, userUID, date string) error
	GetGlobalCancellations(ctx context.Context) (models.GlobalCancellations, error)
	SetGlobalCancellations(ctx context.Context, global models.GlobalCancellations) error
}

// Cache: кэш общих отмен.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Notifier отправляет текстовое уведомление в чат администратора.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// MenuReader возвращает меню на дату.
type MenuReader interface {
	GetMenu(ctx context.Context, date string) (*models.Meal, error)
}

// Service: операции с бронированиями.
type Service struct {
	store       Store
	cache       Cache
	notifier    Notifier
	menu        MenuReader
	policy      *policy.Policy
	metrics     *metrics.Metrics
	log         *slog.Logger
	now         func() time.Time
	concurrency int
}

// Option настраивает Service.
type Option func(*Service)

// WithCache включает кэширование общих отмен.
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

// WithMenu подключает меню к сводке пользователя.
func WithMenu(m MenuReader) Option { return func(s *Service) { s.menu = m } }

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithConcurrency ограничивает число одновременных записей массовой отмены.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New создаёт Service.
func New(store Store, notifier Notifier, p *policy.Policy, m *metrics.Metrics, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		notifier:    notifier,
		policy:      p,
		metrics:     m,
		log:         log,
		now:         time.Now,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GlobalCancellations возвращает общие отмены, по возможности из кэша.
// Кэш живёт не дольше CacheTTL и сбрасывается при каждой записи общих отмен,
// поэтому чтения, от которых зависят отчёты и проверки, идут через ReloadGlobalCancellations.
func (s *Service) GlobalCancellations(ctx context.Context) (models.GlobalCancellations, error) {
	if s.cache != nil {
		var global models.GlobalCancellations
		found, err := s.cache.Get(ctx, cache.GlobalCancellationsKey, &global)
		if err != nil {
			s.log.Warn("failed to read global cancellations from cache", sl.Err(err))
		}
		if found {
			if global == nil {
				global = models.GlobalCancellations{}
			}
			return global, nil
		}
	}
	return s.ReloadGlobalCancellations(ctx)
}

// ReloadGlobalCancellations читает общие отмены из хранилища в обход кэша и обновляет кэш.
func (s *Service) ReloadGlobalCancellations(ctx context.Context) (models.GlobalCancellations, error) {
	const op = "booking.ReloadGlobalCancellations"

	global, err := s.store.GetGlobalCancellations(ctx)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if global == nil {
		global = models.GlobalCancellations{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.GlobalCancellationsKey, global); err != nil {
			s.log.Warn("failed to cache global cancellations", sl.Err(err))
		}
	}
	return global, nil
}

func (s *Service) invalidateGlobal(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.GlobalCancellationsKey); err != nil {
		s.log.Warn("failed to invalidate global cancellations cache", sl.Err(err))
	}
}

// notify отправляет уведомление. Ошибка только логируется: запись уже выполнена.
func (s *Service) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.log.Warn("notification failed", slog.String("message", message), sl.Err(err))
		s.metrics.Notification("published", false)
		return
	}
	s.metrics.Notification("published", true)
}

func (s *Service) parseDate(date string) (time.Time, error) {
	d, err := s.policy.ParseDate(date)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q", date)
	}
	return d, nil
}

func (s *Service) getUser(ctx context.Context, op, userUID string) (*models.User, error) {
	if userUID == "" {
		return nil, apperr.Validation("user id is required")
	}
	user, err := s.store.GetUser(ctx, userUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return user, nil
}

// CancelMessage формирует текст уведомления об отмене.
func CancelMessage(name, date string) string {
	return fmt.Sprintf("%s Food canceled for %s", name, date)
}

// UndoMessage формирует текст уведомления о возврате отмены.
func UndoMessage(name, date string) string {
	return fmt.Sprintf("%s Food canceled -Undo for %s", name, date)
}
