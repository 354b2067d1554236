package department

import (
	"context"
	"testing"

	"github.com/bpo-ops/ops-backend-go/internal/domain/department"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDepartmentService(t *testing.T) {
	db := pgtest.Open(t)
	userRepo := postgresql.NewUserRepository(db)
	svc := NewDepartmentService(postgresql.NewDepartmentRepository(db), userRepo)
	ctx := context.Background()

	manager, err := userRepo.Create(ctx, user.User{Email: "lead@example.com", FullName: "Lea Lead", Role: user.RoleManager, IsActive: true})
	require.NoError(t, err)

	ops, err := svc.Create(ctx, department.CreateDepartmentRequest{Name: "Operations", Code: "ops", ManagerID: &manager.ID})
	require.NoError(t, err)
	assert.Equal(t, "OPS", ops.Code)
	require.NotNil(t, ops.ManagerName)
	assert.Equal(t, "Lea Lead", *ops.ManagerName)

	_, err = svc.Create(ctx, department.CreateDepartmentRequest{Name: "Ops again", Code: "OPS"})
	assert.ErrorIs(t, err, department.ErrDepartmentCodeExists)

	voice, err := svc.Create(ctx, department.CreateDepartmentRequest{Name: "Voice", Code: "VOICE", ParentID: &ops.ID})
	require.NoError(t, err)
	inbound, err := svc.Create(ctx, department.CreateDepartmentRequest{Name: "Inbound", Code: "INBOUND", ParentID: &voice.ID})
	require.NoError(t, err)

	t.Run("tree", func(t *testing.T) {
		tree, err := svc.Tree(ctx)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Equal(t, "OPS", tree[0].Code)
		require.Len(t, tree[0].Children, 1)
		require.Len(t, tree[0].Children[0].Children, 1)
		assert.Equal(t, "INBOUND", tree[0].Children[0].Children[0].Code)
	})

	t.Run("cycle rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, department.UpdateDepartmentRequest{ID: ops.ID, ParentID: &inbound.ID})
		assert.ErrorIs(t, err, department.ErrCircularParent)

		_, err = svc.Update(ctx, department.UpdateDepartmentRequest{ID: ops.ID, ParentID: &ops.ID})
		assert.ErrorIs(t, err, department.ErrCircularParent)
	})

	t.Run("clear parent", func(t *testing.T) {
		updated, err := svc.Update(ctx, department.UpdateDepartmentRequest{ID: inbound.ID, ParentID: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, updated.ParentID)
	})

	t.Run("members", func(t *testing.T) {
		members, err := svc.AddMember(ctx, voice.ID, department.AddMemberRequest{UserID: manager.ID, IsPrimary: true})
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.True(t, members[0].IsPrimary)

		detail, err := svc.Get(ctx, voice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, detail.MemberCount)

		require.NoError(t, svc.RemoveMember(ctx, voice.ID, manager.ID))
		assert.ErrorIs(t, svc.RemoveMember(ctx, voice.ID, manager.ID), department.ErrMemberNotFound)
	})

	t.Run("delete refuses parents", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, ops.ID), department.ErrDepartmentHasChildren)
		require.NoError(t, svc.Delete(ctx, voice.ID))
		require.NoError(t, svc.Delete(ctx, ops.ID))
		_, err := svc.Get(ctx, ops.ID)
		assert.ErrorIs(t, err, department.ErrDepartmentNotFound)
	})
}
