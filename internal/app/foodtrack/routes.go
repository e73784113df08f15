// Package foodtrack собирает HTTP-приложение FoodTrack: маршруты, сервисы и их зависимости.
package foodtrack

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/account"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/admin"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/booking"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/feedback"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/health"
	"github.com/magabrotheeeer/foodtrack/internal/http/handlers/menu"
	"github.com/magabrotheeeer/foodtrack/internal/http/middlewarectx"
)

// Services: сервисы, за которыми стоят обработчики.
type Services struct {
	Auth       AuthService
	Booking    booking.Service
	Account    account.Service
	Reporter   admin.Reporter
	Deliveries admin.Deliveries
	Notifier   admin.Broadcaster
	Menu       menu.Service
	Feedback   feedback.Service
	Pinger     health.Pinger
}

// AuthService объединяет регистрацию, вход и проверку токена.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.Service
}

// RateLimit параметры ограничения частоты запросов на авторизованные маршруты.
type RateLimit struct {
	RPS   float64
	Burst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, limit RateLimit) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	bookingHandler := booking.New(logger, s.Booking)
	accountHandler := account.New(logger, s.Account)
	adminHandler := admin.New(logger, s.Reporter, s.Deliveries, s.Notifier)
	menuHandler := menu.New(logger, s.Menu)
	feedbackHandler := feedback.New(logger, s.Feedback)

	r.Get("/health", health.New(logger, s.Pinger).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limit.RPS, limit.Burst))

			r.Get("/me", accountHandler.Me)
			r.Put("/me/category", accountHandler.SetMyCategory)

			r.Post("/bookings/cancel", bookingHandler.Cancel)
			r.Post("/bookings/cancel-range", bookingHandler.CancelRange)
			r.Post("/bookings/undo", bookingHandler.UndoCancel)
			r.Get("/bookings/summary", bookingHandler.Summary)
			r.Get("/bookings/calendar", bookingHandler.Calendar)

			r.Get("/menu/{date}", menuHandler.Get)

			r.Post("/feedback", feedbackHandler.Submit)
			r.Get("/feedback", feedbackHandler.History)

			// Панель администратора
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))

				r.Get("/report", adminHandler.Report)
				r.Get("/report/csv", adminHandler.ExportCSV)
				r.Post("/not-delivered", adminHandler.NotDelivered)
				r.Post("/broadcast", adminHandler.Broadcast)

				r.Get("/users", accountHandler.ListUsers)
				r.Patch("/users/{uid}", accountHandler.UpdateUser)
				r.Post("/users/{uid}/lock", accountHandler.ToggleLocked)
				r.Post("/users/{uid}/blacklist", accountHandler.ToggleBlacklist)
				r.Post("/users/{uid}/delivered", adminHandler.MarkDelivered)
				r.Get("/blacklist", accountHandler.ListBlacklist)

				r.Put("/menu", menuHandler.Set)

				r.Get("/feedback", feedbackHandler.List)
				r.Get("/feedback/stats", feedbackHandler.Stats)
				r.Post("/feedback/{id}/respond", feedbackHandler.Respond)
				r.Post("/feedback/{id}/review", feedbackHandler.Review)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
