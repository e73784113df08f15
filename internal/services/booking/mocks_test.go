package booking

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/foodtrack/internal/lib/metrics"
	"github.com/magabrotheeeer/foodtrack/internal/lib/policy"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *StoreMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *StoreMock) GetOverrides(ctx context.Context, userUID string) (models.OverrideSet, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.OverrideSet), args.Error(1)
}

func (m *StoreMock) SetOverrides(ctx context.Context, userUID string, overrides models.OverrideSet) error {
	args := m.Called(ctx, userUID, overrides)
	return args.Error(0)
}

func (m *StoreMock) DeleteOverride(ctx context.Context, userUID, date string) error {
	args := m.Called(ctx, userUID, date)
	return args.Error(0)
}

func (m *StoreMock) GetGlobalCancellations(ctx context.Context) (models.GlobalCancellations, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.GlobalCancellations), args.Error(1)
}

func (m *StoreMock) SetGlobalCancellations(ctx context.Context, global models.GlobalCancellations) error {
	args := m.Called(ctx, global)
	return args.Error(0)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Notify(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MenuMock struct {
	mock.Mock
}

func (m *MenuMock) GetMenu(ctx context.Context, date string) (*models.Meal, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meal), args.Error(1)
}

var ist = time.FixedZone("IST", 5*3600+1800)

// at возвращает момент июня 2024 года в IST. 10 июня приходится на понедельник.
func at(day, hh, mm int) time.Time {
	return time.Date(2024, 6, day, hh, mm, 0, 0, ist)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(store Store, notifier Notifier, now time.Time, opts ...Option) *Service {
	p := policy.New(ist, policy.Clock{Hour: 7, Minute: 30}, policy.Clock{Hour: 14, Minute: 30})
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New(store, notifier, p, metrics.Noop(), noopLogger(), opts...)
}

func user(uid, name string) *models.User {
	return &models.User{UUID: uid, Name: name, Email: name + "@example.com", Category: models.CategoryMedium, Role: models.RoleUser}
}
