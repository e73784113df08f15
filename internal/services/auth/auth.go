// Package auth содержит регистрацию, вход и проверку токенов пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/lib/jwt"
	"github.com/magabrotheeeer/foodtrack/internal/lib/password"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CountAdmins возвращает количество администраторов.
	CountAdmins(ctx context.Context) (int, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает пользователя с ролью user. Новая учётная запись заблокирована
// до одобрения администратором и не имеет даты подключения.
func (s *AuthService) Register(ctx context.Context, in models.DummyRegister) (string, error) {
	const op = "auth.Register"

	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return "", apperr.Validation("name and email are required")
	}
	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return "", apperr.Validation("password cannot be used: %v", err)
	}
	user := models.User{
		UUID:         uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Category:     models.Category(in.Category).Normalize(),
		Locked:       true,
		Role:         models.RoleUser,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", apperr.Store(op, err)
	}
	return uid, nil
}

// Login проверяет пароль и выпускает токен.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		err = apperr.Store(op, err)
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}
	token, err := s.jwtMaker.GenerateToken(user.UUID, user.Role, user.DisplayName())
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает данные пользователя из него.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Identity, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrUnauthorized, err)
	}
	return &models.Identity{
		UserUID: claims.UserUID(),
		Role:    claims.Role,
		Name:    claims.Name,
	}, nil
}

// EnsureAdmin создаёт администратора, если в базе ещё нет ни одного.
// Пустой email означает, что первичный администратор не настроен.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword, name string) error {
	const op = "auth.EnsureAdmin"

	n, err := s.users.CountAdmins(ctx)
	if err != nil {
		return apperr.Store(op, err)
	}
	if n > 0 {
		return nil
	}
	if email == "" || rawPassword == "" {
		s.log.Warn("no admin account exists and bootstrap admin is not configured")
		return nil
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.users.CreateUser(ctx, models.User{
		UUID:         uuid.New().String(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hashed,
		Category:     models.CategoryMedium,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return apperr.Store(op, err)
	}
	s.log.Info("bootstrap admin created", slog.String("email", email))
	return nil
}
