// Package account реализует HTTP-обработчики учётных записей: профиль
// пользователя, смену категории и административное управление пользователями.
package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodtrack/internal/http/request"
	"github.com/magabrotheeeer/foodtrack/internal/http/response"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Service описывает операции с учётными записями.
type Service interface {
	Me(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetCategory(ctx context.Context, actor models.Identity, userUID, category string) (*models.User, error)
	SetStartDate(ctx context.Context, userUID, date string) (*models.User, error)
	ToggleLocked(ctx context.Context, userUID string) (bool, error)
	ToggleBlacklist(ctx context.Context, userUID string) (bool, error)
	ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error)
}

// Handler обрабатывает запросы к учётным записям.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Me godoc
// @Summary Профиль текущего пользователя
// @Tags Account
// @Produce  json
// @Success 200 {object} map[string]any
// @Failure 401 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.Me")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	user, err := h.service.Me(r.Context(), id.UserUID)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}

// SetMyCategory godoc
// @Summary Смена своей категории порции
// @Description Доступно только в окне правок с 14:30 до 07:30 следующего дня.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body models.DummyCategory true "Новая категория"
// @Success 200 {object} map[string]any
// @Failure 422 {object} response.ErrorResponse "Вне окна правок"
// @Security BearerAuth
// @Router /me/category [put]
func (h *Handler) SetMyCategory(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.SetMyCategory")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	var req models.DummyCategory
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	user, err := h.service.SetCategory(r.Context(), id, id.UserUID, req.Category)
	if err != nil {
		log.Error("failed to set category", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}

// ListUsers godoc
// @Summary Список пользователей
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any
// @Failure 403 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.ListUsers")

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"users": users,
		"count": len(users),
	}))
}

// UpdateUser godoc
// @Summary Изменение пользователя администратором
// @Description Меняет категорию и/или дату подключения. Пустая start_date снимает дату.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body models.DummyUserUpdate true "Изменяемые поля"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{uid} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.UpdateUser")

	actor, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	uid := chi.URLParam(r, "uid")
	var req models.DummyUserUpdate
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	if req.Category == nil && req.StartDate == nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("nothing to update"))
		return
	}

	var (
		user *models.User
		err  error
	)
	if req.Category != nil {
		if user, err = h.service.SetCategory(r.Context(), actor, uid, *req.Category); err != nil {
			log.Error("failed to set category", sl.Err(err))
			response.FromError(w, r, err)
			return
		}
	}
	if req.StartDate != nil {
		if user, err = h.service.SetStartDate(r.Context(), uid, *req.StartDate); err != nil {
			log.Error("failed to set start date", sl.Err(err))
			response.FromError(w, r, err)
			return
		}
	}

	log.Info("user updated", slog.String("user_uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}

// ToggleLocked godoc
// @Summary Блокировка или разблокировка пользователя
// @Tags Admin
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /admin/users/{uid}/lock [post]
func (h *Handler) ToggleLocked(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.ToggleLocked")

	uid := chi.URLParam(r, "uid")
	locked, err := h.service.ToggleLocked(r.Context(), uid)
	if err != nil {
		log.Error("failed to toggle lock", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":    uid,
		"locked": locked,
	}))
}

// ToggleBlacklist godoc
// @Summary Добавление или удаление пользователя из чёрного списка
// @Tags Admin
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /admin/users/{uid}/blacklist [post]
func (h *Handler) ToggleBlacklist(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.ToggleBlacklist")

	uid := chi.URLParam(r, "uid")
	listed, err := h.service.ToggleBlacklist(r.Context(), uid)
	if err != nil {
		log.Error("failed to toggle blacklist", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":         uid,
		"blacklisted": listed,
	}))
}

// ListBlacklist godoc
// @Summary Чёрный список
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /admin/blacklist [get]
func (h *Handler) ListBlacklist(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.ListBlacklist")

	entries, err := h.service.ListBlacklist(r.Context())
	if err != nil {
		log.Error("failed to list blacklist", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entries": entries,
	}))
}
