// Package admin реализует HTTP-обработчики панели администратора:
// месячный отчёт, выгрузку CSV, отметки доставки и рассылку.
package admin

import (
	"context"
	"fmt"
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

// Reporter строит месячный отчёт.
type Reporter interface {
	Report(ctx context.Context, month, selectedDate string) (*models.Report, error)
	ExportCSV(ctx context.Context, month string) ([]byte, error)
}

// Deliveries меняет состояние доставки.
type Deliveries interface {
	BulkNotDelivered(ctx context.Context, date string) (int, error)
	MarkDelivered(ctx context.Context, userUID, date string) error
}

// Broadcaster рассылает сообщения пользователям.
type Broadcaster interface {
	Broadcast(ctx context.Context, message string) error
}

// Handler обрабатывает запросы администратора.
type Handler struct {
	log         *slog.Logger
	reporter    Reporter
	deliveries  Deliveries
	broadcaster Broadcaster
	validate    *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, reporter Reporter, deliveries Deliveries, broadcaster Broadcaster) *Handler {
	return &Handler{
		log:         log,
		reporter:    reporter,
		deliveries:  deliveries,
		broadcaster: broadcaster,
		validate:    validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Report godoc
// @Summary Месячный отчёт
// @Description Количество и сумма по пользователям, статистика категорий на выбранную дату, даты с отменами.
// @Tags Admin
// @Produce  json
// @Param month query string false "Месяц YYYY-MM, по умолчанию текущий"
// @Param date query string false "Дата статистики YYYY-MM-DD, по умолчанию сегодня"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /admin/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.Report")

	q := r.URL.Query()
	report, err := h.reporter.Report(r.Context(), q.Get("month"), q.Get("date"))
	if err != nil {
		log.Error("failed to build report", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"report": report,
	}))
}

// ExportCSV godoc
// @Summary Выгрузка отчёта в CSV
// @Tags Admin
// @Produce  text/csv
// @Param month query string false "Месяц YYYY-MM, по умолчанию текущий"
// @Success 200 {string} string "CSV"
// @Security BearerAuth
// @Router /admin/report/csv [get]
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ExportCSV")

	month := r.URL.Query().Get("month")
	data, err := h.reporter.ExportCSV(r.Context(), month)
	if err != nil {
		log.Error("failed to export csv", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	name := "report.csv"
	if month != "" {
		name = fmt.Sprintf("report-%s.csv", month)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write csv", sl.Err(err))
	}
}

// NotDelivered godoc
// @Summary Отметка «не доставлено» для всех
// @Description Отменяет дату всем пользователям и записывает общую отмену. Повторный вызов ничего не меняет.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyDate true "Дата YYYY-MM-DD"
// @Success 200 {object} map[string]any
// @Failure 503 {object} response.ErrorResponse "Часть записей не выполнена"
// @Security BearerAuth
// @Router /admin/not-delivered [post]
func (h *Handler) NotDelivered(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.NotDelivered")

	var req models.DummyDate
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	n, err := h.deliveries.BulkNotDelivered(r.Context(), req.Date)
	if err != nil {
		log.Error("bulk not delivered failed", slog.Int("written", n), sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"date":  req.Date,
		"users": n,
	}))
}

// MarkDelivered godoc
// @Summary Подтверждение доставки пользователю
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body models.DummyDate true "Дата YYYY-MM-DD"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /admin/users/{uid}/delivered [post]
func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.MarkDelivered")

	uid := chi.URLParam(r, "uid")
	var req models.DummyDate
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.deliveries.MarkDelivered(r.Context(), uid, req.Date); err != nil {
		log.Error("mark delivered failed", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":   uid,
		"date":  req.Date,
		"state": models.StateConfirmed,
	}))
}

// Broadcast godoc
// @Summary Рассылка сообщения пользователям
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyMessage true "Текст сообщения"
// @Success 200 {object} map[string]any
// @Failure 503 {object} response.ErrorResponse "Очередь недоступна"
// @Security BearerAuth
// @Router /admin/broadcast [post]
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.Broadcast")

	var req models.DummyMessage
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.broadcaster.Broadcast(r.Context(), req.Message); err != nil {
		log.Error("broadcast failed", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "notification sent",
	}))
}
