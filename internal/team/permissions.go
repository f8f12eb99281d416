package team

type Permission string

const (
	PermCreateTasks    Permission = "create_tasks"
	PermCreateSubtasks Permission = "create_subtasks"
	PermAssign         Permission = "assign"
	PermInvite         Permission = "invite"
	PermRemoveMembers  Permission = "remove_members"
)

// Permissions is stored as JSONB on the membership row.
type Permissions struct {
	CreateTasks    bool `json:"create_tasks"`
	CreateSubtasks bool `json:"create_subtasks"`
	Assign         bool `json:"assign"`
	Invite         bool `json:"invite"`
	RemoveMembers  bool `json:"remove_members"`
}

func DefaultMemberPermissions() Permissions {
	return Permissions{
		CreateTasks:    true,
		CreateSubtasks: true,
		Assign:         true,
	}
}

func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermCreateTasks:
		return p.CreateTasks
	case PermCreateSubtasks:
		return p.CreateSubtasks
	case PermAssign:
		return p.Assign
	case PermInvite:
		return p.Invite
	case PermRemoveMembers:
		return p.RemoveMembers
	}
	return false
}

// Can reports whether an accepted member holds perm. Owners and admins hold
// every permission regardless of their stored flags.
func (m *Member) Can(perm Permission) bool {
	if !m.IsAccepted() {
		return false
	}
	if m.Role == RoleOwner || m.Role == RoleAdmin {
		return true
	}
	return m.Permissions.Has(perm)
}

func (m *Member) IsManager() bool {
	return m.IsAccepted() && (m.Role == RoleOwner || m.Role == RoleAdmin)
}
