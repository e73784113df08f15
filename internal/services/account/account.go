// Package account управляет учётными записями: категорией, датой подключения,
// блокировкой и запретом на обратную связь.
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// BlacklistReason: причина, с которой администратор блокирует обратную связь.
const BlacklistReason = "Spamming"

// Store описывает операции хранилища, нужные сервису.
type Store interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, userUID string, patch models.UserPatch) (*models.User, error)
	ToggleLocked(ctx context.Context, userUID string) (bool, error)
	AddToBlacklist(ctx context.Context, userUID, reason string) error
	RemoveFromBlacklist(ctx context.Context, userUID string) error
	IsBlacklisted(ctx context.Context, userUID string) (bool, error)
	ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error)
}

// Service: операции над учётными записями.
type Service struct {
	store  Store
	policy *policy.Policy
	log    *slog.Logger
	now    func() time.Time
}

// New создаёт Service. now может быть nil, тогда используется time.Now.
func New(store Store, p *policy.Policy, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, policy: p, log: log, now: now}
}

// Me возвращает учётную запись пользователя.
func (s *Service) Me(ctx context.Context, userUID string) (*models.User, error) {
	const op = "account.Me"
	u, err := s.store.GetUser(ctx, userUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return u, nil
}

// ListUsers возвращает пользователей без администраторов.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "account.ListUsers"
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if !u.IsAdmin() {
			result = append(result, u)
		}
	}
	return result, nil
}

// SetCategory меняет категорию порции. Администратор может менять её любому
// пользователю в любое время, пользователь только себе и только в окне правок.
func (s *Service) SetCategory(ctx context.Context, actor models.Identity, userUID, category string) (*models.User, error) {
	const op = "account.SetCategory"

	c := models.Category(category)
	if !c.Valid() {
		return nil, apperr.Validation("unknown category %q", category)
	}
	if !actor.IsAdmin() {
		if actor.UserUID != userUID {
			return nil, apperr.Forbidden("cannot change another user's category")
		}
		if !s.policy.CanEditCategory(s.now()) {
			return nil, apperr.Policy("category can be changed only between %s and %s",
				s.policy.EditOpens(), s.policy.Cutoff())
		}
	}

	u, err := s.store.UpdateUser(ctx, userUID, models.UserPatch{Category: &c})
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	s.log.Info("category changed", slog.String("user_uid", userUID), slog.String("category", category))
	return u, nil
}

// SetStartDate задаёт дату подключения. Пустая строка снимает дату.
func (s *Service) SetStartDate(ctx context.Context, userUID, date string) (*models.User, error) {
	const op = "account.SetStartDate"

	patch := models.UserPatch{ClearStart: date == ""}
	if date != "" {
		d, err := s.policy.ParseDate(date)
		if err != nil {
			return nil, apperr.Validation("invalid start date %q", date)
		}
		patch.StartDate = &d
	}

	u, err := s.store.UpdateUser(ctx, userUID, patch)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	s.log.Info("start date changed", slog.String("user_uid", userUID), slog.String("start_date", date))
	return u, nil
}

// ToggleLocked инвертирует блокировку и возвращает новое значение.
func (s *Service) ToggleLocked(ctx context.Context, userUID string) (bool, error) {
	const op = "account.ToggleLocked"
	locked, err := s.store.ToggleLocked(ctx, userUID)
	if err != nil {
		return false, apperr.Store(op, err)
	}
	s.log.Info("lock toggled", slog.String("user_uid", userUID), slog.Bool("locked", locked))
	return locked, nil
}

// ToggleBlacklist включает или снимает запрет на обратную связь.
// Возвращает true, если пользователь теперь в чёрном списке.
func (s *Service) ToggleBlacklist(ctx context.Context, userUID string) (bool, error) {
	const op = "account.ToggleBlacklist"

	if _, err := s.store.GetUser(ctx, userUID); err != nil {
		return false, apperr.Store(op, err)
	}
	listed, err := s.store.IsBlacklisted(ctx, userUID)
	if err != nil {
		return false, apperr.Store(op, err)
	}
	if listed {
		if err := s.store.RemoveFromBlacklist(ctx, userUID); err != nil {
			return false, apperr.Store(op, err)
		}
		s.log.Info("user removed from blacklist", slog.String("user_uid", userUID))
		return false, nil
	}
	if err := s.store.AddToBlacklist(ctx, userUID, BlacklistReason); err != nil {
		return false, apperr.Store(op, err)
	}
	s.log.Info("user blacklisted", slog.String("user_uid", userUID))
	return true, nil
}

// ListBlacklist возвращает чёрный список.
func (s *Service) ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	const op = "account.ListBlacklist"
	entries, err := s.store.ListBlacklist(ctx)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return entries, nil
}
