// Package scheduler по расписанию отправляет администратору сводку заказов
// на следующий рабочий день.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/foodtrack/internal/lib/accounting"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/lib/workday"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Repository: чтение пользователей и их переопределений.
type Repository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListOverrides(ctx context.Context, from, to string) (map[string]models.OverrideSet, error)
}

// GlobalReader читает общие отмены из хранилища в обход кэша.
type GlobalReader interface {
	ReloadGlobalCancellations(ctx context.Context) (models.GlobalCancellations, error)
}

// Notifier отправляет сообщение администратору.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// SchedulerService запускает ежедневную сводку.
type SchedulerService struct {
	repo     Repository
	global   GlobalReader
	notifier Notifier
	policy   *policy.Policy
	log      *slog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo Repository, global GlobalReader, notifier Notifier, p *policy.Policy, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		global:   global,
		notifier: notifier,
		policy:   p,
		log:      log,
		now:      time.Now,
		cron:     cron.New(cron.WithLocation(p.Location())),
	}
}

// Start регистрирует сводку по cron-выражению spec и запускает планировщик.
func (s *SchedulerService) Start(ctx context.Context, spec string) error {
	const op = "scheduler.Start"
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunDigest(ctx); err != nil {
			s.log.Error("daily digest failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", slog.String("spec", spec))
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// DigestMessage формирует текст сводки на дату.
func DigestMessage(date string, stat models.DailyStat) string {
	return fmt.Sprintf("Orders for %s: small %d, medium %d, large %d, total %d",
		date, stat.Small, stat.Medium, stat.Large, stat.Total)
}

// RunDigest считает заказы на следующий рабочий день и отправляет сводку администратору.
func (s *SchedulerService) RunDigest(ctx context.Context) (models.DailyStat, error) {
	const op = "scheduler.RunDigest"

	date := workday.FormatDate(workday.NextWorkingDay(s.policy.Today(s.now())))
	s.log.Info("building daily digest", slog.String("date", date))

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return models.DailyStat{}, fmt.Errorf("%s: %w", op, err)
	}
	overrides, err := s.repo.ListOverrides(ctx, date, date)
	if err != nil {
		return models.DailyStat{}, fmt.Errorf("%s: %w", op, err)
	}
	global, err := s.global.ReloadGlobalCancellations(ctx)
	if err != nil {
		return models.DailyStat{}, fmt.Errorf("%s: %w", op, err)
	}

	bookings := make([]models.UserBookings, 0, len(users))
	for _, u := range users {
		bookings = append(bookings, models.UserBookings{User: u, Overrides: overrides[u.UUID]})
	}
	stat := accounting.Daily(date, bookings, global)

	if err := s.notifier.Notify(ctx, DigestMessage(date, stat)); err != nil {
		return stat, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("daily digest sent", slog.String("date", date), slog.Int("total", stat.Total))
	return stat, nil
}
