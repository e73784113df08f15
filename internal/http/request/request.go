// Package request содержит общие шаги разбора HTTP-запросов:
// декодирование JSON с валидацией и извлечение пользователя из контекста.
package request

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodtrack/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodtrack/internal/http/response"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Decode читает тело запроса в dst и проверяет его валидатором.
// При ошибке ответ уже записан и возвращается false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}

	if err := v.Struct(dst); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			render.JSON(w, r, response.Error("invalid request body"))
			return false
		}
		render.JSON(w, r, response.ValidationError(verrs))
		return false
	}
	return true
}

// Identity возвращает пользователя запроса. Если его нет, пишет 401.
func Identity(w http.ResponseWriter, r *http.Request, log *slog.Logger) (models.Identity, bool) {
	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		log.Error("user identity not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return models.Identity{}, false
	}
	return id, true
}
