// Package apperr определяет классы ошибок бизнес-логики.
//
// Ошибки создаются конструкторами Validation, Policy и Store и проверяются
// через errors.Is по соответствующей сигнальной ошибке.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrValidation: некорректные или отсутствующие данные, запись не выполнялась.
	ErrValidation = errors.New("validation error")
	// ErrStoreUnavailable: ошибка чтения или записи во внешнее хранилище.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrPolicyViolation: действие вне разрешённого окна или для запрещённой даты.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrNotFound: запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: неверные учётные данные или токен.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: у пользователя нет прав на действие.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: запись уже существует.
	ErrConflict = errors.New("already exists")
)

// Validation возвращает ошибку валидации с причиной.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Policy возвращает ошибку нарушения правил с причиной.
func Policy(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPolicyViolation, fmt.Sprintf(format, args...))
}

// Forbidden возвращает ошибку отсутствия прав с причиной.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Store оборачивает ошибку хранилища. sql.ErrNoRows превращается в ErrNotFound.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
