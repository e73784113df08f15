// Package metrics содержит счётчики Prometheus сервиса FoodTrack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics: набор счётчиков, которые обновляют сервисы.
type Metrics struct {
	Cancellations *prometheus.CounterVec
	BulkWrites    *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

// New регистрирует счётчики в reg. Для reg == nil используется DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Cancellations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodtrack",
			Name:      "cancellations_total",
			Help:      "Booking state changes made through the API.",
		}, []string{"action"}),
		BulkWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodtrack",
			Name:      "bulk_writes_total",
			Help:      "Per-user writes performed by bulk not-delivered operations.",
		}, []string{"result"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodtrack",
			Name:      "notifications_total",
			Help:      "Notifications by pipeline stage and result.",
		}, []string{"stage", "result"}),
	}
}

// Noop возвращает счётчики, зарегистрированные в отдельном реестре. Удобно в тестах.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

// CancellationDone учитывает изменение бронирования: cancel, undo, confirm.
func (m *Metrics) CancellationDone(action string) {
	if m == nil {
		return
	}
	m.Cancellations.WithLabelValues(action).Inc()
}

// BulkWrite учитывает одну запись массовой отмены.
func (m *Metrics) BulkWrite(ok bool) {
	if m == nil {
		return
	}
	m.BulkWrites.WithLabelValues(result(ok)).Inc()
}

// Notification учитывает уведомление на стадии published или delivered.
func (m *Metrics) Notification(stage string, ok bool) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(stage, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
