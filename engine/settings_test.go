package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnBravos/bookhub-manager/model"
)

func TestUpdateLendingSettingsAppliesImmediately(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	admin := createTestUser(t, s, model.RoleAdmin)
	member := createTestUser(t, s, model.RoleMember)
	first := createTestBook(t, s, 1)
	second := createTestBook(t, s, 1)

	settings := testPolicy().Settings()
	settings.MaxActiveLoans = 1
	_, err := e.UpdateLendingSettings(ctx, staffActor(admin), settings)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Policy().MaxActiveLoans)

	dueDate := testClock.Add(14 * 24 * time.Hour).Unix()
	_, err = e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: first.ID, UserID: member.ID, DueDate: dueDate,
	})
	require.NoError(t, err)

	_, err = e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: second.ID, UserID: member.ID, DueDate: dueDate,
	})
	require.Error(t, err)
	assert.Equal(t, model.ErrUserAtLoanLimit, model.KindOf(err))
}

func TestUpdateLendingSettingsRequiresAdmin(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())

	librarian := createTestUser(t, s, model.RoleLibrarian)
	_, err := e.UpdateLendingSettings(context.Background(), staffActor(librarian), testPolicy().Settings())
	require.Error(t, err)
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}

func TestPersistedLendingSettingsSurviveRestart(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	admin := createTestUser(t, s, model.RoleAdmin)
	settings := testPolicy().Settings()
	settings.LoanPeriodDays = 21
	settings.AllowRenewal = false
	_, err := e.UpdateLendingSettings(ctx, staffActor(admin), settings)
	require.NoError(t, err)

	// A fresh engine over the same database starts from the config defaults
	// and picks the persisted rules back up.
	restarted := NewEngine(s, testPolicy())
	require.NoError(t, restarted.LoadPolicy(ctx))
	assert.Equal(t, 21*24*time.Hour, restarted.Policy().LoanPeriod)
	assert.False(t, restarted.Policy().AllowRenewal)
}
