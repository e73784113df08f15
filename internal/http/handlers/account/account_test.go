package account

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodtrack/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Me(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockService) SetCategory(ctx context.Context, actor models.Identity, userUID, category string) (*models.User, error) {
	args := m.Called(ctx, actor, userUID, category)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockService) SetStartDate(ctx context.Context, userUID, date string) (*models.User, error) {
	args := m.Called(ctx, userUID, date)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockService) ToggleLocked(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ToggleBlacklist(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ListBlacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]models.BlacklistEntry)
	return entries, args.Error(1)
}

var (
	userID  = models.Identity{UserUID: "u1", Role: models.RoleUser, Name: "Asha"}
	adminID = models.Identity{UserUID: "a1", Role: models.RoleAdmin, Name: "Admin"}
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(t *testing.T, method, target string, body string, id *models.Identity, uid string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
	if id != nil {
		ctx = middlewarectx.WithIdentity(ctx, *id)
	}
	if uid != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("uid", uid)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	return got
}

func TestHandler_SetMyCategory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockErr    error
		callMock   bool
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			body:       `{"category":"large"}`,
			callMock:   true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "outside edit window",
			body:       `{"category":"large"}`,
			callMock:   true,
			mockErr:    apperr.Policy("category can be changed only between 14:30 and 07:30"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "category can be changed only between 14:30 and 07:30",
		},
		{
			name:       "unknown category",
			body:       `{"category":"huge"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field Category must be one of: small medium large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.callMock {
				svc.On("SetCategory", mock.Anything, userID, "u1", "large").
					Return(&models.User{UUID: "u1", Category: models.CategoryLarge}, tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).SetMyCategory(rec, newRequest(t, http.MethodPut, "/me/category", tt.body, &userID, ""))

			assert.Equal(t, tt.wantStatus, rec.Code)
			got := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				user := got["data"].(map[string]any)["user"].(map[string]any)
				assert.Equal(t, "large", user["category"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_UpdateUser(t *testing.T) {
	t.Run("category and start date", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SetCategory", mock.Anything, adminID, "u1", "small").
			Return(&models.User{UUID: "u1", Category: models.CategorySmall}, nil).Once()
		svc.On("SetStartDate", mock.Anything, "u1", "2024-06-03").
			Return(&models.User{UUID: "u1", Category: models.CategorySmall}, nil).Once()
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).UpdateUser(rec, newRequest(t, http.MethodPatch, "/admin/users/u1",
			`{"category":"small","start_date":"2024-06-03"}`, &adminID, "u1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("clear start date", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SetStartDate", mock.Anything, "u1", "").Return(&models.User{UUID: "u1"}, nil).Once()
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).UpdateUser(rec, newRequest(t, http.MethodPatch, "/admin/users/u1",
			`{"start_date":""}`, &adminID, "u1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty patch", func(t *testing.T) {
		svc := new(MockService)
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).UpdateUser(rec, newRequest(t, http.MethodPatch, "/admin/users/u1", `{}`, &adminID, "u1"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "nothing to update", decode(t, rec)["error"])
		svc.AssertNotCalled(t, "SetCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SetStartDate", mock.Anything, "zz", "2024-06-03").
			Return(nil, apperr.Store("account.SetStartDate", apperr.ErrNotFound)).Once()
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).UpdateUser(rec, newRequest(t, http.MethodPatch, "/admin/users/zz",
			`{"start_date":"2024-06-03"}`, &adminID, "zz"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Toggles(t *testing.T) {
	svc := new(MockService)
	svc.On("ToggleLocked", mock.Anything, "u1").Return(false, nil).Once()
	svc.On("ToggleBlacklist", mock.Anything, "u1").Return(true, nil).Once()
	h := New(newNoopLogger(), svc)

	rec := httptest.NewRecorder()
	h.ToggleLocked(rec, newRequest(t, http.MethodPost, "/admin/users/u1/lock", "", &adminID, "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["data"].(map[string]any)["locked"])

	rec = httptest.NewRecorder()
	h.ToggleBlacklist(rec, newRequest(t, http.MethodPost, "/admin/users/u1/blacklist", "", &adminID, "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["data"].(map[string]any)["blacklisted"])

	svc.AssertExpectations(t)
}

func TestHandler_ListUsers(t *testing.T) {
	svc := new(MockService)
	svc.On("ListUsers", mock.Anything).Return([]models.User{{UUID: "u1", Name: "Asha"}, {UUID: "u2", Name: "Bala"}}, nil).Once()
	rec := httptest.NewRecorder()

	New(newNoopLogger(), svc).ListUsers(rec, newRequest(t, http.MethodGet, "/admin/users", "", &adminID, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["data"].(map[string]any)["count"])
}
