// Package repository реализует хранилище данных FoodTrack на основе PostgreSQL:
// пользователи, переопределения бронирований, общие отмены, меню,
// обратная связь и чёрный список.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены и база отвечает.
func CheckDatabaseReady(storage *Storage) error {
	return storage.Ping(context.Background())
}

// Ping проверяет доступность базы и наличие схемы, используется health-сервером.
func (s *Storage) Ping(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'bookings'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("required table bookings query error: %w", err)
	}
	if !exists {
		return errors.New("required table bookings missing")
	}
	return nil
}

const uniqueViolation = "23505"

// wrap добавляет op к ошибке драйвера и переводит нарушение уникальности в ErrConflict.
func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
