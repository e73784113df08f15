package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
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

func (m *StoreMock) UpdateUser(ctx context.Context, userUID string, patch models.UserPatch) (*models.User, error) {
	args := m.Called(ctx, userUID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *StoreMock) ToggleLocked(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *StoreMock) AddToBlacklist(ctx context.Context, userUID, reason string) error {
	return m.Called(ctx, userUID, reason).Error(0)
}

func (m *StoreMock) RemoveFromBlacklist(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

func (m *StoreMock) IsBlacklisted(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *StoreMock) ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BlacklistEntry), args.Error(1)
}

var ist = time.FixedZone("IST", 5*3600+1800)

func newService(store Store, hour int) *Service {
	p := policy.New(ist, policy.Clock{Hour: 7, Minute: 30}, policy.Clock{Hour: 14, Minute: 30})
	now := time.Date(2024, 6, 10, hour, 0, 0, 0, ist)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, p, log, func() time.Time { return now })
}

func TestService_SetCategory(t *testing.T) {
	large := models.CategoryLarge
	self := models.Identity{UserUID: "u1", Role: models.RoleUser}
	admin := models.Identity{UserUID: "a1", Role: models.RoleAdmin}

	tests := []struct {
		name     string
		actor    models.Identity
		target   string
		category string
		hour     int
		wantCall bool
		wantErr  error
	}{
		{name: "self inside evening window", actor: self, target: "u1", category: "large", hour: 15, wantCall: true},
		{name: "self before cutoff", actor: self, target: "u1", category: "large", hour: 6, wantCall: true},
		{name: "self outside window", actor: self, target: "u1", category: "large", hour: 10, wantErr: apperr.ErrPolicyViolation},
		{name: "self for another user", actor: self, target: "u2", category: "large", hour: 15, wantErr: apperr.ErrForbidden},
		{name: "admin at any time", actor: admin, target: "u2", category: "large", hour: 10, wantCall: true},
		{name: "unknown category", actor: admin, target: "u2", category: "huge", hour: 10, wantErr: apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(StoreMock)
			if tt.wantCall {
				store.On("UpdateUser", mock.Anything, tt.target, models.UserPatch{Category: &large}).
					Return(&models.User{UUID: tt.target, Category: large}, nil).Once()
			}

			u, err := newService(store, tt.hour).SetCategory(context.Background(), tt.actor, tt.target, tt.category)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				store.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, large, u.Category)
			store.AssertExpectations(t)
		})
	}
}

func TestService_SetStartDate(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		store := new(StoreMock)
		store.On("UpdateUser", mock.Anything, "u1", mock.MatchedBy(func(p models.UserPatch) bool {
			return p.StartDate != nil && p.StartDate.Format("2006-01-02") == "2024-06-03" && !p.ClearStart
		})).Return(&models.User{UUID: "u1"}, nil).Once()

		_, err := newService(store, 10).SetStartDate(context.Background(), "u1", "2024-06-03")
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("clear", func(t *testing.T) {
		store := new(StoreMock)
		store.On("UpdateUser", mock.Anything, "u1", models.UserPatch{ClearStart: true}).Return(&models.User{UUID: "u1"}, nil).Once()

		_, err := newService(store, 10).SetStartDate(context.Background(), "u1", "")
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := newService(new(StoreMock), 10).SetStartDate(context.Background(), "u1", "03.06.2024")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestService_ToggleLocked(t *testing.T) {
	store := new(StoreMock)
	store.On("ToggleLocked", mock.Anything, "u1").Return(false, nil).Once()
	store.On("ToggleLocked", mock.Anything, "missing").Return(false, apperr.ErrNotFound).Once()

	svc := newService(store, 10)
	locked, err := svc.ToggleLocked(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, locked)

	_, err = svc.ToggleLocked(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_ToggleBlacklist(t *testing.T) {
	t.Run("adds with reason", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetUser", mock.Anything, "u1").Return(&models.User{UUID: "u1"}, nil).Once()
		store.On("IsBlacklisted", mock.Anything, "u1").Return(false, nil).Once()
		store.On("AddToBlacklist", mock.Anything, "u1", BlacklistReason).Return(nil).Once()

		listed, err := newService(store, 10).ToggleBlacklist(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, listed)
		store.AssertExpectations(t)
	})

	t.Run("removes", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetUser", mock.Anything, "u1").Return(&models.User{UUID: "u1"}, nil).Once()
		store.On("IsBlacklisted", mock.Anything, "u1").Return(true, nil).Once()
		store.On("RemoveFromBlacklist", mock.Anything, "u1").Return(nil).Once()

		listed, err := newService(store, 10).ToggleBlacklist(context.Background(), "u1")
		require.NoError(t, err)
		assert.False(t, listed)
		store.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetUser", mock.Anything, "u1").Return(&models.User{UUID: "u1"}, nil).Once()
		store.On("IsBlacklisted", mock.Anything, "u1").Return(false, errors.New("timeout")).Once()

		_, err := newService(store, 10).ToggleBlacklist(context.Background(), "u1")
		assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	})
}

func TestService_ListUsers_SkipsAdmins(t *testing.T) {
	store := new(StoreMock)
	store.On("ListUsers", mock.Anything).Return([]models.User{
		{UUID: "a1", Role: models.RoleAdmin},
		{UUID: "u1", Role: models.RoleUser},
	}, nil).Once()

	users, err := newService(store, 10).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].UUID)
}
