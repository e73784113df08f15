// Package booking реализует HTTP-обработчики отмены и просмотра бронирований
// текущего пользователя.
package booking

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodtrack/internal/http/request"
	"github.com/magabrotheeeer/foodtrack/internal/http/response"
	"github.com/magabrotheeeer/foodtrack/internal/lib/sl"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

// Service описывает операции бронирований, нужные обработчикам.
type Service interface {
	Cancel(ctx context.Context, userUID, date string) error
	CancelRange(ctx context.Context, userUID, from, to string) ([]string, error)
	UndoCancel(ctx context.Context, userUID, date string) error
	Summary(ctx context.Context, userUID string) (*models.Summary, error)
	Calendar(ctx context.Context, userUID string) ([]models.CalendarDay, error)
}

// Handler обрабатывает запросы пользователя к своим бронированиям.
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

// Cancel godoc
// @Summary Отмена питания на дату
// @Description Отменяет доставку на рабочий день, пока не прошло время отсечки.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Param request body models.DummyDate true "Дата YYYY-MM-DD"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 422 {object} response.ErrorResponse "Выходной, время отсечки прошло или аккаунт заблокирован"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /bookings/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.booking.Cancel")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	var req models.DummyDate
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.Cancel(r.Context(), id.UserUID, req.Date); err != nil {
		log.Error("failed to cancel", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("food cancelled", slog.String("user_uid", id.UserUID), slog.String("date", req.Date))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"date":   req.Date,
		"status": models.StatusCancelled.String(),
	}))
}

// CancelRange godoc
// @Summary Отмена питания на диапазон дат
// @Description Отменяет все будние дни диапазона, для которых не прошло время отсечки.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Param request body models.DummyRange true "Границы диапазона"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Некорректный диапазон"
// @Failure 422 {object} response.ErrorResponse "Нет подходящих дат"
// @Security BearerAuth
// @Router /bookings/cancel-range [post]
func (h *Handler) CancelRange(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.booking.CancelRange")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	var req models.DummyRange
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	dates, err := h.service.CancelRange(r.Context(), id.UserUID, req.From, req.To)
	if err != nil {
		log.Error("failed to cancel range", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("food cancelled for range", slog.Int("count", len(dates)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"cancelled": dates,
	}))
}

// UndoCancel godoc
// @Summary Возврат отменённого питания
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Param request body models.DummyDate true "Дата YYYY-MM-DD"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Дата не отменена"
// @Failure 422 {object} response.ErrorResponse "Отмена администратора или время отсечки прошло"
// @Security BearerAuth
// @Router /bookings/undo [post]
func (h *Handler) UndoCancel(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.booking.UndoCancel")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	var req models.DummyDate
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.UndoCancel(r.Context(), id.UserUID, req.Date); err != nil {
		log.Error("failed to undo cancel", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"date":   req.Date,
		"status": models.StatusActive.String(),
	}))
}

// Summary godoc
// @Summary Сводка пользователя за месяц
// @Tags Bookings
// @Produce  json
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /bookings/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.booking.Summary")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), id.UserUID)
	if err != nil {
		log.Error("failed to build summary", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"summary": summary,
	}))
}

// Calendar godoc
// @Summary Календарь текущего месяца
// @Tags Bookings
// @Produce  json
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /bookings/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.booking.Calendar")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}

	days, err := h.service.Calendar(r.Context(), id.UserUID)
	if err != nil {
		log.Error("failed to build calendar", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"days": days,
	}))
}
