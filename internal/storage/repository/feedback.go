package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

const feedbackColumns = `id, user_uid, user_name, user_category, category, comment,
			      created_at, status, admin_response, responded_at`

func scanFeedback(row rowScanner) (*models.Feedback, error) {
	var f models.Feedback
	var response sql.NullString
	var respondedAt sql.NullTime
	if err := row.Scan(&f.ID, &f.UserUID, &f.UserName, &f.UserCategory, &f.Category, &f.Comment,
		&f.CreatedAt, &f.Status, &response, &respondedAt); err != nil {
		return nil, err
	}
	if response.Valid {
		f.AdminResponse = &response.String
	}
	if respondedAt.Valid {
		f.RespondedAt = &respondedAt.Time
	}
	return &f, nil
}

// CreateFeedback сохраняет новый отзыв.
func (s *Storage) CreateFeedback(ctx context.Context, f models.Feedback) error {
	const op = "storage.CreateFeedback"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO feedback (id, user_uid, user_name, user_category, category, comment, created_at, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.DB.ExecContext(ctx, query,
		f.ID, f.UserUID, f.UserName, string(f.UserCategory), f.Category, f.Comment,
		f.CreatedAt, f.Status); err != nil {
		return wrap(op, err)
	}
	return nil
}

func (s *Storage) queryFeedback(ctx context.Context, op, query string, args ...any) ([]models.Feedback, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Feedback, 0)
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListFeedbackByUser возвращает отзывы пользователя, новые первыми.
func (s *Storage) ListFeedbackByUser(ctx context.Context, userUID string) ([]models.Feedback, error) {
	const op = "storage.ListFeedbackByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + feedbackColumns + `
			  FROM feedback
			  WHERE user_uid = $1
			  ORDER BY created_at DESC, id`
	return s.queryFeedback(ctx, op, query, userUID)
}

// ListFeedback возвращает все отзывы, новые первыми. Пустой status означает без фильтра.
func (s *Storage) ListFeedback(ctx context.Context, status string) ([]models.Feedback, error) {
	const op = "storage.ListFeedback"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + feedbackColumns + `
			  FROM feedback
			  WHERE $1 = '' OR status = $1
			  ORDER BY created_at DESC, id`
	return s.queryFeedback(ctx, op, query, status)
}

// FeedbackStats считает отзывы по статусам.
func (s *Storage) FeedbackStats(ctx context.Context) (models.FeedbackStats, error) {
	const op = "storage.FeedbackStats"
	select {
	case <-ctx.Done():
		return models.FeedbackStats{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var st models.FeedbackStats
	query := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE status = 'new'),
			      COUNT(*) FILTER (WHERE status = 'reviewed'),
			      COUNT(*) FILTER (WHERE status = 'resolved')
			  FROM feedback`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&st.All, &st.New, &st.Reviewed, &st.Resolved); err != nil {
		return models.FeedbackStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// UpdateFeedbackStatus меняет статус отзыва и, если response не nil, сохраняет ответ и время ответа.
func (s *Storage) UpdateFeedbackStatus(ctx context.Context, id, status string, response *string, at time.Time) error {
	const op = "storage.UpdateFeedbackStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE feedback
			  SET status = $2,
			      admin_response = COALESCE($3, admin_response),
			      responded_at = CASE WHEN $3::text IS NULL THEN responded_at ELSE $4 END
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id, status, response, at)
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
