// Package feedback реализует HTTP-обработчики обратной связи: отправку
// и историю для пользователя, просмотр и ответы для администратора.
package feedback

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

// Service описывает операции с отзывами.
type Service interface {
	Submit(ctx context.Context, userUID string, in models.DummyFeedback) (*models.Feedback, error)
	History(ctx context.Context, userUID string) ([]models.Feedback, error)
	List(ctx context.Context, status string) ([]models.Feedback, error)
	Stats(ctx context.Context) (models.FeedbackStats, error)
	Respond(ctx context.Context, id, response string) error
	MarkReviewed(ctx context.Context, id string) error
}

// Handler обрабатывает запросы обратной связи.
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

// Submit godoc
// @Summary Отправка отзыва
// @Description Комментарий не пустой и не длиннее 500 символов. Пользователи из чёрного списка отклоняются.
// @Tags Feedback
// @Accept  json
// @Produce  json
// @Param request body models.DummyFeedback true "Категория и комментарий"
// @Success 201 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Пользователь в чёрном списке"
// @Security BearerAuth
// @Router /feedback [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.feedback.Submit")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	var req models.DummyFeedback
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	fb, err := h.service.Submit(r.Context(), id.UserUID, req)
	if err != nil {
		log.Error("failed to submit feedback", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("feedback submitted", slog.String("id", fb.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"feedback": fb,
	}))
}

// History godoc
// @Summary История своих отзывов
// @Tags Feedback
// @Produce  json
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /feedback [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.feedback.History")

	id, ok := request.Identity(w, r, log)
	if !ok {
		return
	}
	items, err := h.service.History(r.Context(), id.UserUID)
	if err != nil {
		log.Error("failed to get history", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"feedback": items,
	}))
}

// List godoc
// @Summary Отзывы пользователей
// @Tags Admin
// @Produce  json
// @Param status query string false "new, reviewed, resolved или all"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Security BearerAuth
// @Router /admin/feedback [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.feedback.List")

	items, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		log.Error("failed to list feedback", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"feedback": items,
		"count":    len(items),
	}))
}

// Stats godoc
// @Summary Количество отзывов по статусам
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /admin/feedback/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.feedback.Stats")

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to get stats", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"stats": stats,
	}))
}

// Respond godoc
// @Summary Ответ на отзыв
// @Description Сохраняет ответ и переводит отзыв в статус resolved.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID отзыва"
// @Param request body models.DummyResponse true "Ответ администратора"
// @Success 200 {object} map[string]any
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /admin/feedback/{id}/respond [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.feedback.Respond")

	id := chi.URLParam(r, "id")
	var req models.DummyResponse
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.Respond(r.Context(), id, req.Response); err != nil {
		log.Error("failed to respond", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"status": models.FeedbackResolved,
	}))
}

// Review godoc
// @Summary Отметка отзыва как просмотренного
// @Tags Admin
// @Produce  json
// @Param id path string true "ID отзыва"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /admin/feedback/{id}/review [post]
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.feedback.Review")

	id := chi.URLParam(r, "id")
	if err := h.service.MarkReviewed(r.Context(), id); err != nil {
		log.Error("failed to mark reviewed", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"status": models.FeedbackReviewed,
	}))
}
