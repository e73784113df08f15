package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodtrack/internal/lib/apperr"
	"github.com/magabrotheeeer/foodtrack/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, CheckDatabaseReady(storage))

	factory := NewTestDataFactory(storage)
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	uid := factory.CreateUser(t, "Asha", "asha@example.com", models.RoleUser, &start)
	factory.CreateUser(t, "Admin", "admin@example.com", models.RoleAdmin, nil)

	_, err := storage.CreateUser(ctx, models.User{
		UUID: uuid.New().String(), Email: "asha@example.com", PasswordHash: "x",
		Category: models.CategorySmall, Role: models.RoleUser,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := storage.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UUID)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, "2024-06-03", got.StartDate.Format("2006-01-02"))

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	admins, err := storage.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	large := models.CategoryLarge
	updated, err := storage.UpdateUser(ctx, uid, models.UserPatch{Category: &large, ClearStart: true})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryLarge, updated.Category)
	assert.Nil(t, updated.StartDate)

	next := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	updated, err = storage.UpdateUser(ctx, uid, models.UserPatch{StartDate: &next})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryLarge, updated.Category)
	require.NotNil(t, updated.StartDate)
	assert.Equal(t, "2024-07-01", updated.StartDate.Format("2006-01-02"))

	locked, err := storage.ToggleLocked(ctx, uid)
	require.NoError(t, err)
	assert.True(t, locked)
	locked, err = storage.ToggleLocked(ctx, uid)
	require.NoError(t, err)
	assert.False(t, locked)

	_, err = storage.GetUser(ctx, uuid.New().String())
	assert.ErrorIs(t, apperr.Store("test", err), apperr.ErrNotFound)
}

func TestStorage_Overrides(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "Asha", "asha@example.com", models.RoleUser, nil)

	err := storage.SetOverrides(ctx, uid, models.OverrideSet{
		"2024-06-10": models.StateCancelled,
		"2024-06-11": models.StateCancelled,
	})
	require.NoError(t, err)

	err = storage.SetOverrides(ctx, uid, models.OverrideSet{"2024-06-11": models.StateConfirmed})
	require.NoError(t, err)

	got, err := storage.GetOverrides(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.OverrideSet{
		"2024-06-10": models.StateCancelled,
		"2024-06-11": models.StateConfirmed,
	}, got)

	all, err := storage.ListOverrides(ctx, "2024-06-01", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, map[string]models.OverrideSet{uid: {"2024-06-10": models.StateCancelled}}, all)

	require.NoError(t, storage.DeleteOverride(ctx, uid, "2024-06-10"))
	assert.ErrorIs(t, storage.DeleteOverride(ctx, uid, "2024-06-10"), apperr.ErrNotFound)

	require.NoError(t, storage.SetGlobalCancellations(ctx, models.GlobalCancellations{"2024-06-12": models.StateCancelled}))
	require.NoError(t, storage.SetGlobalCancellations(ctx, models.GlobalCancellations{"2024-06-12": models.StateCancelled}))
	global, err := storage.GetGlobalCancellations(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GlobalCancellations{"2024-06-12": models.StateCancelled}, global)
}

func TestStorage_Meals(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.SetMeal(ctx, models.Meal{Date: "2024-06-10", Menu: "Rice"}))
	require.NoError(t, storage.SetMeal(ctx, models.Meal{Date: "2024-06-10", Menu: "Dal, rice"}))

	meal, err := storage.GetMeal(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, "Dal, rice", meal.Menu)

	_, err = storage.GetMeal(ctx, "2024-06-11")
	assert.ErrorIs(t, apperr.Store("test", err), apperr.ErrNotFound)
}

func TestStorage_FeedbackAndBlacklist(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "Asha", "asha@example.com", models.RoleUser, nil)

	older := models.Feedback{
		ID: uuid.New().String(), UserUID: uid, UserName: "Asha", UserCategory: models.CategoryMedium,
		Category: "service", Comment: "late", CreatedAt: time.Now().Add(-time.Hour), Status: models.FeedbackNew,
	}
	newer := older
	newer.ID = uuid.New().String()
	newer.Comment = "tasty"
	newer.Category = "food_quality"
	newer.CreatedAt = time.Now()
	require.NoError(t, storage.CreateFeedback(ctx, older))
	require.NoError(t, storage.CreateFeedback(ctx, newer))

	list, err := storage.ListFeedbackByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	response := "sorry"
	require.NoError(t, storage.UpdateFeedbackStatus(ctx, older.ID, models.FeedbackResolved, &response, time.Now()))
	require.NoError(t, storage.UpdateFeedbackStatus(ctx, newer.ID, models.FeedbackReviewed, nil, time.Now()))
	assert.ErrorIs(t, storage.UpdateFeedbackStatus(ctx, uuid.New().String(), models.FeedbackReviewed, nil, time.Now()), apperr.ErrNotFound)

	resolved, err := storage.ListFeedback(ctx, models.FeedbackResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.NotNil(t, resolved[0].AdminResponse)
	assert.Equal(t, "sorry", *resolved[0].AdminResponse)
	assert.NotNil(t, resolved[0].RespondedAt)

	stats, err := storage.FeedbackStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStats{All: 2, Reviewed: 1, Resolved: 1}, stats)

	require.NoError(t, storage.AddToBlacklist(ctx, uid, "Spamming"))
	blocked, err := storage.IsBlacklisted(ctx, uid)
	require.NoError(t, err)
	assert.True(t, blocked)

	entries, err := storage.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Asha", entries[0].UserName)

	require.NoError(t, storage.RemoveFromBlacklist(ctx, uid))
	assert.ErrorIs(t, storage.RemoveFromBlacklist(ctx, uid), apperr.ErrNotFound)
}
