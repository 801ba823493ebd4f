package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/events"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/meinhoongagan/carehub/repository/repotest"
	"github.com/meinhoongagan/carehub/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminService(store repository.Store, pub service.Publisher) *service.AdminService {
	return service.NewAdminService(store, service.NewProfileAggregator(store, clockAt(fixedNow), nopLogger), pub, nopLogger)
}

func TestAdminMembership(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	admins := newAdminService(store, nil)

	root := repotest.User(t, conn, models.RoleClient, "Root")
	mod := repotest.User(t, conn, models.RoleClient, "Mod")

	t.Run("Create", func(t *testing.T) {
		profile, err := admins.CreateAdmin(ctx, root.ID, models.AdminRoleSuper)
		require.NoError(t, err)
		assert.Len(t, profile.Permissions, 4)
		assert.Equal(t, models.RoleAdmin, profile.User.Role)

		profile, err = admins.CreateAdmin(ctx, mod.ID, models.AdminRoleModerator)
		require.NoError(t, err)
		assert.Equal(t, []string{models.PermissionCaregiverApproval}, profile.Permissions)

		_, err = admins.CreateAdmin(ctx, mod.ID, models.AdminRoleModerator)
		assertKind(t, err, apperr.KindConflict)
		_, err = admins.CreateAdmin(ctx, "missing", "")
		assertKind(t, err, apperr.KindNotFound)
		_, err = admins.CreateAdmin(ctx, root.ID, models.AdminRole("OWNER"))
		assertKind(t, err, apperr.KindBadRequest)

		list, err := admins.ListAdmins(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("Permissions", func(t *testing.T) {
		ok, err := admins.HasPermission(ctx, mod.ID, models.PermissionUserManagement)
		require.NoError(t, err)
		assert.False(t, ok)

		profile, err := admins.AddPermission(ctx, mod.ID, models.PermissionUserManagement)
		require.NoError(t, err)
		assert.Len(t, profile.Permissions, 2)
		profile, err = admins.AddPermission(ctx, mod.ID, models.PermissionUserManagement)
		require.NoError(t, err)
		assert.Len(t, profile.Permissions, 2)

		ok, err = admins.HasPermission(ctx, mod.ID, models.PermissionUserManagement)
		require.NoError(t, err)
		assert.True(t, ok, "permissions survive a reload")

		profile, err = admins.RemovePermission(ctx, mod.ID, models.PermissionCaregiverApproval)
		require.NoError(t, err)
		assert.Equal(t, []string{models.PermissionUserManagement}, profile.Permissions)

		_, err = admins.AddPermission(ctx, mod.ID, "launch_rockets")
		assertKind(t, err, apperr.KindBadRequest)
		_, err = admins.AddPermission(ctx, "missing", models.PermissionSystemSettings)
		assertKind(t, err, apperr.KindNotFound)

		ok, err = admins.HasPermission(ctx, "missing", models.PermissionSystemSettings)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RemoveKeepsLastAdmin", func(t *testing.T) {
		require.NoError(t, admins.RemoveAdmin(ctx, mod.ID))

		demoted, err := store.GetUser(ctx, mod.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleClient, demoted.Role)
		_, err = store.GetAdminProfile(ctx, mod.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assertKind(t, admins.RemoveAdmin(ctx, mod.ID), apperr.KindNotFound)
		assertKind(t, admins.RemoveAdmin(ctx, root.ID), apperr.KindForbidden)

		still, err := store.GetUser(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, still.Role)
	})
}

func TestAdminCaregiverApproval(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	pub := &fakePublisher{}
	admins := newAdminService(store, pub)

	boss := repotest.User(t, conn, models.RoleClient, "Boss")
	_, err := admins.CreateAdmin(ctx, boss.ID, models.AdminRoleAdmin)
	require.NoError(t, err)
	clerk := repotest.User(t, conn, models.RoleClient, "Clerk")
	_, err = admins.CreateAdmin(ctx, clerk.ID, models.AdminRoleModerator)
	require.NoError(t, err)
	_, err = admins.RemovePermission(ctx, clerk.ID, models.PermissionCaregiverApproval)
	require.NoError(t, err)

	older := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Old", Unverified: true, CreatedAt: fixedNow.Add(-48 * time.Hour)})
	newer := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "New", Unverified: true, CreatedAt: fixedNow.Add(-time.Hour)})
	repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Done"})

	t.Run("PendingNewestFirst", func(t *testing.T) {
		page, err := admins.PendingCaregivers(ctx, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, newer.ID, page.Items[0].ID)
		assert.Equal(t, older.ID, page.Items[1].ID)
	})

	t.Run("RequiresPermission", func(t *testing.T) {
		_, err := admins.ApproveCaregiver(ctx, clerk.ID, newer.ID)
		assertKind(t, err, apperr.KindForbidden)
		assert.Empty(t, pub.events)
	})

	t.Run("Approve", func(t *testing.T) {
		view, err := admins.ApproveCaregiver(ctx, boss.ID, newer.ID)
		require.NoError(t, err)
		assert.True(t, view.IsVerified)

		require.Len(t, pub.events, 1)
		assert.Equal(t, events.EventCaregiverDecided, pub.events[0].Type)
		payload := pub.events[0].Payload.(events.CaregiverDecisionPayload)
		assert.True(t, payload.Approved)
		assert.Equal(t, newer.UserID, payload.UserID)

		approved, err := admins.ApprovedCaregivers(ctx, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, approved.Total)
	})

	t.Run("Reject", func(t *testing.T) {
		view, err := admins.RejectCaregiver(ctx, boss.ID, newer.ID)
		require.NoError(t, err)
		assert.False(t, view.IsVerified)

		_, err = admins.ApproveCaregiver(ctx, boss.ID, "missing")
		assertKind(t, err, apperr.KindNotFound)
	})
}

func TestAdminBootstrap(t *testing.T) {
	store, conn := repotest.New(t)
	ctx := context.Background()
	admins := newAdminService(store, &fakePublisher{})
	users := service.NewUserService(store, nopLogger).WithHashCost(bcrypt.MinCost)

	t.Run("NoEmail", func(t *testing.T) {
		profile, err := admins.Bootstrap(ctx, users, " ", "correct horse")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, err := admins.Bootstrap(ctx, users, "owner@example.com", "short")
		assertKind(t, err, apperr.KindBadRequest)
		_, err = store.GetUserByEmail(ctx, "owner@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	pending := repotest.Caregiver(t, conn, repotest.CaregiverOpts{FirstName: "Pending", Unverified: true})

	t.Run("CreatesFirstAdmin", func(t *testing.T) {
		profile, err := admins.Bootstrap(ctx, users, "Owner@Example.com", "correct horse")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, models.AdminRoleSuper, profile.AdminRole)
		assert.Equal(t, models.RoleAdmin, profile.User.Role)
		assert.True(t, profile.User.IsVerified)

		user, err := users.Authenticate(ctx, "owner@example.com", "correct horse")
		require.NoError(t, err)

		view, err := admins.ApproveCaregiver(ctx, user.ID, pending.ID)
		require.NoError(t, err)
		assert.True(t, view.IsVerified)
	})

	t.Run("SkipsWhenAdminExists", func(t *testing.T) {
		profile, err := admins.Bootstrap(ctx, users, "second@example.com", "correct horse")
		require.NoError(t, err)
		assert.Nil(t, profile)
		_, err = store.GetUserByEmail(ctx, "second@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestAdminBootstrapPromotesExistingUser(t *testing.T) {
	store, _ := repotest.New(t)
	ctx := context.Background()
	admins := newAdminService(store, nil)
	users := service.NewUserService(store, nopLogger).WithHashCost(bcrypt.MinCost)

	existing, err := users.Register(ctx, service.RegisterInput{Email: "ops@example.com", Password: "correct horse", FirstName: "Ops"})
	require.NoError(t, err)
	profile, err := admins.Bootstrap(ctx, users, "ops@example.com", "")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, existing.ID, profile.UserID)
	assert.Len(t, profile.Permissions, 4)
	assert.True(t, profile.User.IsVerified)
}
