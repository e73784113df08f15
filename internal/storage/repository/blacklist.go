package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// AddToBlacklist запрещает пользователю оставлять отзывы.
func (s *Storage) AddToBlacklist(ctx context.Context, userUID, reason string) error {
	const op = "storage.AddToBlacklist"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO blacklist (user_uid, reason) VALUES ($1, $2)
			  ON CONFLICT (user_uid) DO UPDATE SET reason = EXCLUDED.reason`
	if _, err := s.DB.ExecContext(ctx, query, userUID, reason); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFromBlacklist снимает запрет. Если записи не было, возвращает apperr.ErrNotFound.
func (s *Storage) RemoveFromBlacklist(ctx context.Context, userUID string) error {
	const op = "storage.RemoveFromBlacklist"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM blacklist WHERE user_uid = $1`, userUID)
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

// IsBlacklisted сообщает, заблокирован ли пользователь.
func (s *Storage) IsBlacklisted(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.IsBlacklisted"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM blacklist WHERE user_uid = $1)`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListBlacklist возвращает записи чёрного списка с именами пользователей.
func (s *Storage) ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	const op = "storage.ListBlacklist"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT b.user_uid::text, COALESCE(NULLIF(u.name, ''), u.email), b.reason, b.created_at
			  FROM blacklist b
			  JOIN users u ON u.uid = b.user_uid
			  ORDER BY b.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.BlacklistEntry, 0)
	for rows.Next() {
		var e models.BlacklistEntry
		if err = rows.Scan(&e.UserUID, &e.UserName, &e.Reason, &e.BlacklistedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
