// Package middlewarectx содержит HTTP middleware для проверки JWT токенов,
// прав администратора и ограничения частоты запросов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха добавляет в контекст идентификатор пользователя, роль и имя
// для дальнейшего использования в обработчиках.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/foodtrack/internal/http/response"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID: ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Role: ключ для роли пользователя в контексте
	Role Key = "role"
	// Name: ключ для имени пользователя в контексте
	Name Key = "name"
)

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Identity, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет данные пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			identity, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil || identity == nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

// WithIdentity кладёт данные пользователя в контекст.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	ctx = context.WithValue(ctx, UserUID, id.UserUID)
	ctx = context.WithValue(ctx, Role, id.Role)
	return context.WithValue(ctx, Name, id.Name)
}

// IdentityFrom извлекает данные пользователя из контекста.
// Второй результат false, если запрос не прошёл JWTMiddleware.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	if !ok || uid == "" {
		return models.Identity{}, false
	}
	role, _ := ctx.Value(Role).(string)
	name, _ := ctx.Value(Name).(string)
	return models.Identity{UserUID: uid, Role: role, Name: name}, true
}
