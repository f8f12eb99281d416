package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberCan(t *testing.T) {
	allPerms := []Permission{PermCreateTasks, PermCreateSubtasks, PermAssign, PermInvite, PermRemoveMembers}

	t.Run("owner and admin hold everything", func(t *testing.T) {
		for _, role := range []Role{RoleOwner, RoleAdmin} {
			m := &Member{Role: role, Status: StatusAccepted}
			for _, p := range allPerms {
				assert.True(t, m.Can(p), "%s should have %s", role, p)
			}
		}
	})

	t.Run("member uses stored flags", func(t *testing.T) {
		m := &Member{Role: RoleMember, Status: StatusAccepted, Permissions: DefaultMemberPermissions()}
		assert.True(t, m.Can(PermCreateTasks))
		assert.True(t, m.Can(PermCreateSubtasks))
		assert.True(t, m.Can(PermAssign))
		assert.False(t, m.Can(PermInvite))
		assert.False(t, m.Can(PermRemoveMembers))
	})

	t.Run("pending grants nothing", func(t *testing.T) {
		m := &Member{Role: RoleOwner, Status: StatusPending}
		for _, p := range allPerms {
			assert.False(t, m.Can(p))
		}
	})

	t.Run("nil member", func(t *testing.T) {
		var m *Member
		assert.False(t, m.Can(PermCreateTasks))
	})

	t.Run("unknown permission", func(t *testing.T) {
		p := Permissions{CreateTasks: true, CreateSubtasks: true, Assign: true, Invite: true, RemoveMembers: true}
		assert.False(t, p.Has(Permission("delete_universe")))
	})
}
