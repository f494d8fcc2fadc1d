package services

import (
	"context"
	"testing"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := utils.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func newProfileFixture(t *testing.T) (*memUserStore, *recordingInvalidator, *ProfileService) {
	t.Helper()
	store := newMemUserStore(
		models.User{ID: "u-1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, Password: hashed(t, "old-secret")},
		models.User{ID: "u-2", Name: "Bob", Email: "bob@example.com", Role: models.RoleUser, Password: hashed(t, "bob-secret")},
		models.User{ID: "a-1", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin, Password: hashed(t, "root-secret")},
	)
	inv := &recordingInvalidator{}
	return store, inv, NewProfileService(store, inv, 6, zap.NewNop())
}

func TestProfileUpdate_OwnNameAndEmail(t *testing.T) {
	store, inv, svc := newProfileFixture(t)

	user, err := svc.Update(context.Background(), "u-1", ProfileUpdate{Name: "Jane D.", Email: "jane.d@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Jane D.", user.Name)
	assert.Equal(t, "jane.d@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, [][]string{{"u-1", "jane@example.com", "jane.d@example.com"}}, inv.calls)
	assert.Equal(t, 1, store.updates)
}

func TestProfileUpdate_ChangePassword(t *testing.T) {
	store, _, svc := newProfileFixture(t)

	_, err := svc.Update(context.Background(), "u-1", ProfileUpdate{CurrentPassword: "old-secret", NewPassword: "new-secret"})
	require.NoError(t, err)

	stored := store.users["u-1"]
	assert.True(t, utils.PasswordMatches("new-secret", stored.Password))
	assert.False(t, utils.PasswordMatches("old-secret", stored.Password))
}

func TestProfileUpdate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		caller   string
		req      ProfileUpdate
		wantKind models.ErrorKind
		wantMsg  string
	}{
		{
			name:     "other user as non-admin",
			caller:   "u-1",
			req:      ProfileUpdate{UserID: "u-2", Name: "Hacked"},
			wantKind: models.KindPermission,
			wantMsg:  "You don't have permission to update this user",
		},
		{
			name:     "role change as non-admin",
			caller:   "u-1",
			req:      ProfileUpdate{Role: models.RoleAdmin},
			wantKind: models.KindPermission,
			wantMsg:  "Only administrators can change roles",
		},
		{
			name:     "missing current password",
			caller:   "u-1",
			req:      ProfileUpdate{NewPassword: "new-secret"},
			wantKind: models.KindInputValidation,
			wantMsg:  "Current password is required to change password",
		},
		{
			name:     "wrong current password",
			caller:   "u-1",
			req:      ProfileUpdate{CurrentPassword: "nope", NewPassword: "new-secret"},
			wantKind: models.KindInputValidation,
			wantMsg:  "Current password is incorrect",
		},
		{
			name:     "short new password",
			caller:   "u-1",
			req:      ProfileUpdate{CurrentPassword: "old-secret", NewPassword: "abc"},
			wantKind: models.KindInputValidation,
			wantMsg:  "New password must be at least 6 characters long",
		},
		{
			name:     "email taken",
			caller:   "u-1",
			req:      ProfileUpdate{Email: "bob@example.com"},
			wantKind: models.KindInputValidation,
			wantMsg:  "Email already exists",
		},
		{
			name:     "unknown target",
			caller:   "a-1",
			req:      ProfileUpdate{UserID: "missing"},
			wantKind: models.KindNotFound,
			wantMsg:  "User not found",
		},
		{
			name:     "invalid role",
			caller:   "a-1",
			req:      ProfileUpdate{UserID: "u-2", Role: "SUPERUSER"},
			wantKind: models.KindInputValidation,
			wantMsg:  "Invalid role",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, inv, svc := newProfileFixture(t)
			before := store.users["u-1"]

			user, err := svc.Update(context.Background(), tt.caller, tt.req)

			require.Error(t, err)
			assert.Nil(t, user)
			assert.Equal(t, tt.wantKind, models.KindOf(err))
			assert.Equal(t, tt.wantMsg, models.MessageOf(err))
			assert.Equal(t, before, store.users["u-1"])
			assert.Equal(t, "Bob", store.users["u-2"].Name)
			assert.Zero(t, store.updates)
			assert.Empty(t, inv.calls)
		})
	}
}

func TestProfileUpdate_AdminUpdatesOtherUser(t *testing.T) {
	store, inv, svc := newProfileFixture(t)

	user, err := svc.Update(context.Background(), "a-1", ProfileUpdate{UserID: "u-2", Role: models.RoleAdmin, Name: "Robert"})
	require.NoError(t, err)

	assert.Equal(t, "u-2", user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "Robert", store.users["u-2"].Name)
	require.Len(t, inv.calls, 1)
	assert.Equal(t, "u-2", inv.calls[0][0])
}

func TestProfileUpdate_StoreFailure(t *testing.T) {
	store, _, svc := newProfileFixture(t)
	store.updateErr = errBoom

	_, err := svc.Update(context.Background(), "u-1", ProfileUpdate{Name: "X"})
	require.Error(t, err)
	assert.Equal(t, models.KindInternal, models.KindOf(err))
	assert.ErrorIs(t, err, errBoom)
}
