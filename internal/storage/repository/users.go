package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/foodtrack/internal/models"
)

const userColumns = `uid, name, email, password_hash, category, locked, start_date, role`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var startDate sql.NullTime
	if err := row.Scan(&u.UUID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Category, &u.Locked, &startDate, &u.Role); err != nil {
		return nil, err
	}
	if startDate.Valid {
		u.StartDate = &startDate.Time
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Повторный email возвращает apperr.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (uid, name, email, password_hash, category, locked, start_date, role)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UUID, user.Name, user.Email, user.PasswordHash, string(user.Category),
		user.Locked, user.StartDate, user.Role).Scan(&newID); err != nil {
		return "", wrap(op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, включая администраторов.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY name, uid`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser применяет частичное обновление и возвращает пользователя после изменения.
func (s *Storage) UpdateUser(ctx context.Context, userUID string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var category *string
	if patch.Category != nil {
		c := string(*patch.Category)
		category = &c
	}

	query := `UPDATE users
			  SET category = COALESCE($2, category),
			      locked = COALESCE($3, locked),
			      start_date = CASE
			          WHEN $4 THEN NULL
			          WHEN $5::date IS NOT NULL THEN $5::date
			          ELSE start_date
			      END
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		userUID, category, patch.Locked, patch.ClearStart, patch.StartDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ToggleLocked инвертирует флаг блокировки и возвращает новое значение.
func (s *Storage) ToggleLocked(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.ToggleLocked"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var locked bool
	query := `UPDATE users SET locked = NOT locked WHERE uid = $1 RETURNING locked`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&locked); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return locked, nil
}

// CountAdmins возвращает количество администраторов.
func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	const op = "storage.CountAdmins"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, models.RoleAdmin).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
