package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository/memory"
)

func TestUpsertKeepsFlags(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewUserRepository(memory.NewStore()))

	created, err := svc.Upsert(ctx, user.UpsertUserRequest{ID: "u1", Email: "u1@example.com", Role: user.RoleUser})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.False(t, created.QRActive)

	on := true
	_, err = svc.Update(ctx, user.UpdateUserRequest{ID: "u1", QRActive: &on})
	require.NoError(t, err)

	again, err := svc.Upsert(ctx, user.UpsertUserRequest{ID: "u1", Email: "u1@example.com", DisplayName: "Ada", Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, again.QRActive)
	assert.Equal(t, "Ada", again.DisplayName)
	assert.Equal(t, user.RoleAdmin, again.Role)
}

func TestUpsertValidation(t *testing.T) {
	svc := NewUserService(memory.NewUserRepository(memory.NewStore()))

	_, err := svc.Upsert(context.Background(), user.UpsertUserRequest{ID: "u1", Email: "nope", Role: "root"})
	assert.Error(t, err)
}

func TestUpsertDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewUserRepository(memory.NewStore()))

	_, err := svc.Upsert(ctx, user.UpsertUserRequest{ID: "u1", Email: "same@example.com", Role: user.RoleUser})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, user.UpsertUserRequest{ID: "u2", Email: "same@example.com", Role: user.RoleUser})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUpdateAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewUserRepository(memory.NewStore()))

	for _, id := range []string{"a", "b"} {
		_, err := svc.Upsert(ctx, user.UpsertUserRequest{ID: id, Email: id + "@example.com", Role: user.RoleUser})
		require.NoError(t, err)
	}

	off := false
	_, err := svc.Update(ctx, user.UpdateUserRequest{ID: "b", Active: &off})
	require.NoError(t, err)

	active, err := svc.List(ctx, user.Filter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)

	_, err = svc.Update(ctx, user.UpdateUserRequest{ID: "missing", Active: &off})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
