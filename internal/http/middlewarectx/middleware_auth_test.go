package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/foodtrack/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*models.Identity, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*models.Identity)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		id, ok := middlewarectx.IdentityFrom(r.Context())
		assert.True(t, ok)
		assert.Equal(t, models.Identity{UserUID: "u1", Role: models.RoleUser, Name: "Asha"}, id)
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.JWTMiddleware(authMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockResp       *models.Identity
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token is expired"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockResp:       &models.Identity{UserUID: "u1", Role: models.RoleUser, Name: "Asha"},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			authMock.ExpectedCalls = nil
			authMock.Calls = nil
			if tt.mockResp != nil || tt.mockErr != nil {
				authMock.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			authMock.AssertExpectations(t)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mw := middlewarectx.AdminOnlyMiddleware(newNoopLogger())(next)

	tests := []struct {
		name     string
		identity *models.Identity
		want     int
	}{
		{name: "no identity", want: http.StatusUnauthorized},
		{name: "regular user", identity: &models.Identity{UserUID: "u1", Role: models.RoleUser}, want: http.StatusForbidden},
		{name: "admin", identity: &models.Identity{UserUID: "a1", Role: models.RoleAdmin}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/report", nil)
			if tt.identity != nil {
				req = req.WithContext(middlewarectx.WithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mw := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 2)(next)

	call := func(uid string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), models.Identity{UserUID: uid, Role: "user"}))
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		return rec.Code
	}

	codes := []int{call("u1"), call("u1"), call("u1")}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusOK, call("u2"), "other users keep their own budget")
}
