package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollaboratorRoleGates(t *testing.T) {
	assert.True(t, RoleOwner.CanEdit())
	assert.True(t, RoleOwner.CanManage())

	assert.True(t, RoleEditor.CanEdit())
	assert.False(t, RoleEditor.CanManage())

	assert.False(t, RoleViewer.CanEdit())
	assert.False(t, RoleViewer.CanManage())
}

func TestInvitationResolve(t *testing.T) {
	now := time.Now()

	t.Run("accept pending", func(t *testing.T) {
		inv := &Invitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, inv.Resolve(InvitationAccepted, now))
		assert.Equal(t, InvitationAccepted, inv.Status)
		require.NotNil(t, inv.ResolvedAt)
		assert.Equal(t, now, *inv.ResolvedAt)
	})

	t.Run("decline pending", func(t *testing.T) {
		inv := &Invitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, inv.Resolve(InvitationDeclined, now))
		assert.Equal(t, InvitationDeclined, inv.Status)
	})

	t.Run("already resolved", func(t *testing.T) {
		inv := &Invitation{Status: InvitationAccepted, ExpiresAt: now.Add(time.Hour)}
		assert.ErrorIs(t, inv.Resolve(InvitationDeclined, now), ErrInvitationResolved)
		assert.Equal(t, InvitationAccepted, inv.Status)
	})

	t.Run("expired", func(t *testing.T) {
		inv := &Invitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Hour)}
		assert.ErrorIs(t, inv.Resolve(InvitationAccepted, now), ErrInvitationExpired)
		assert.Equal(t, InvitationExpired, inv.Status, "expiry is recorded on the invitation")
		assert.Nil(t, inv.ResolvedAt)
	})
}
