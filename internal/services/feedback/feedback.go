// Package feedback принимает отзывы пользователей и обрабатывает ответы администратора.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Store: хранилище отзывов.
type Store interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	IsBlacklisted(ctx context.Context, userUID string) (bool, error)
	CreateFeedback(ctx context.Context, f models.Feedback) error
	ListFeedbackByUser(ctx context.Context, userUID string) ([]models.Feedback, error)
	ListFeedback(ctx context.Context, status string) ([]models.Feedback, error)
	FeedbackStats(ctx context.Context) (models.FeedbackStats, error)
	UpdateFeedbackStatus(ctx context.Context, id, status string, response *string, at time.Time) error
}

// Notifier уведомляет администратора.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Service: операции с обратной связью.
type Service struct {
	store    Store
	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт Service. now может быть nil, тогда используется time.Now.
func New(store Store, notifier Notifier, m *metrics.Metrics, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, notifier: notifier, metrics: m, log: log, now: now}
}

// Message формирует текст уведомления администратору о новом отзыве.
func Message(name, category, comment string) string {
	topic := strings.ToUpper(strings.ReplaceAll(category, "_", " "))
	return fmt.Sprintf("New Feedback from %s.\nCategory: %s.\nComment: %s", name, topic, comment)
}

// Submit сохраняет отзыв пользователя и уведомляет администратора.
func (s *Service) Submit(ctx context.Context, userUID string, in models.DummyFeedback) (*models.Feedback, error) {
	const op = "feedback.Submit"

	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, apperr.Validation("comment must not be empty")
	}
	if utf8.RuneCountInString(comment) > models.MaxCommentLength {
		return nil, apperr.Validation("comment is longer than %d characters", models.MaxCommentLength)
	}
	if !slices.Contains(models.FeedbackCategories, in.Category) {
		return nil, apperr.Validation("unknown feedback category %q", in.Category)
	}

	user, err := s.store.GetUser(ctx, userUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	listed, err := s.store.IsBlacklisted(ctx, userUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	if listed {
		return nil, apperr.Policy("feedback is disabled for this account")
	}

	f := models.Feedback{
		ID:           uuid.New().String(),
		UserUID:      user.UUID,
		UserName:     user.DisplayName(),
		UserCategory: user.Category.Normalize(),
		Category:     in.Category,
		Comment:      comment,
		CreatedAt:    s.now().UTC(),
		Status:       models.FeedbackNew,
	}
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return nil, apperr.Store(op, err)
	}
	s.log.Info("feedback submitted", slog.String("id", f.ID), slog.String("user_uid", f.UserUID))

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, Message(f.UserName, f.Category, f.Comment))
		s.metrics.Notification("published", err == nil)
		if err != nil {
			s.log.Warn("feedback notification failed", slog.String("id", f.ID), sl.Err(err))
		}
	}
	return &f, nil
}

// History возвращает отзывы пользователя, новые первыми.
func (s *Service) History(ctx context.Context, userUID string) ([]models.Feedback, error) {
	const op = "feedback.History"
	items, err := s.store.ListFeedbackByUser(ctx, userUID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return items, nil
}

// List возвращает отзывы с указанным статусом, новые первыми. Пустой статус или "all" возвращает все отзывы.
func (s *Service) List(ctx context.Context, status string) ([]models.Feedback, error) {
	const op = "feedback.List"

	if status == "all" {
		status = ""
	}
	if status != "" && !validStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}
	items, err := s.store.ListFeedback(ctx, status)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return items, nil
}

// Stats возвращает количество отзывов по статусам.
func (s *Service) Stats(ctx context.Context) (models.FeedbackStats, error) {
	const op = "feedback.Stats"
	st, err := s.store.FeedbackStats(ctx)
	if err != nil {
		return models.FeedbackStats{}, apperr.Store(op, err)
	}
	return st, nil
}

// Respond сохраняет ответ администратора и закрывает отзыв.
func (s *Service) Respond(ctx context.Context, id, response string) error {
	const op = "feedback.Respond"

	response = strings.TrimSpace(response)
	if response == "" {
		return apperr.Validation("response must not be empty")
	}
	if err := s.store.UpdateFeedbackStatus(ctx, id, models.FeedbackResolved, &response, s.now().UTC()); err != nil {
		return apperr.Store(op, err)
	}
	s.log.Info("feedback resolved", slog.String("id", id))
	return nil
}

// MarkReviewed отмечает отзыв как просмотренный.
func (s *Service) MarkReviewed(ctx context.Context, id string) error {
	const op = "feedback.MarkReviewed"
	if err := s.store.UpdateFeedbackStatus(ctx, id, models.FeedbackReviewed, nil, s.now().UTC()); err != nil {
		return apperr.Store(op, err)
	}
	return nil
}

func validStatus(status string) bool {
	switch status {
	case models.FeedbackNew, models.FeedbackReviewed, models.FeedbackResolved:
		return true
	}
	return false
}
