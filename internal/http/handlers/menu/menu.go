// Package menu реализует HTTP-обработчики меню на дату.
package menu

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

// Service описывает операции с меню.
type Service interface {
	SetMenu(ctx context.Context, date, menu string) (*models.Meal, error)
	GetMenu(ctx context.Context, date string) (*models.Meal, error)
}

// Handler обрабатывает запросы к меню.
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

// Set godoc
// @Summary Установка меню на дату
// @Tags Menu
// @Accept  json
// @Produce  json
// @Param request body models.DummyMeal true "Дата и меню"
// @Success 200 {object} map[string]any
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /admin/menu [put]
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.menu.Set"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyMeal
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	meal, err := h.service.SetMenu(r.Context(), req.Date, req.Menu)
	if err != nil {
		log.Error("failed to set menu", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("menu updated", slog.String("date", meal.Date))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"meal": meal,
	}))
}

// Get godoc
// @Summary Меню на дату
// @Tags Menu
// @Produce  json
// @Param date path string true "Дата YYYY-MM-DD"
// @Success 200 {object} map[string]any
// @Failure 404 {object} response.ErrorResponse "Меню не задано"
// @Security BearerAuth
// @Router /menu/{date} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.menu.Get"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	meal, err := h.service.GetMenu(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		log.Error("failed to get menu", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"meal": meal,
	}))
}
