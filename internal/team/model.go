package team

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

type MemberStatus string

const (
	StatusPending  MemberStatus = "pending"
	StatusAccepted MemberStatus = "accepted"
)

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// set when listed for a specific user
	Role   Role         `json:"role,omitempty"`
	Status MemberStatus `json:"status,omitempty"`
}

type Member struct {
	TeamID       string       `json:"team_id"`
	UserID       string       `json:"user_id"`
	Email        string       `json:"email,omitempty"`
	Name         *string      `json:"name,omitempty"`
	Role         Role         `json:"role"`
	Status       MemberStatus `json:"status"`
	Permissions  Permissions  `json:"permissions"`
	InvitedEmail *string      `json:"invited_email,omitempty"`
	JoinedAt     *time.Time   `json:"joined_at,omitempty"`
}

func (m *Member) IsAccepted() bool {
	return m != nil && m.Status == StatusAccepted
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

type Invitation struct {
	ID           string           `json:"id"`
	TeamID       string           `json:"team_id"`
	InvitedEmail string           `json:"invited_email"`
	Role         Role             `json:"role"`
	Status       InvitationStatus `json:"status"`
	Token        string           `json:"-"`
	InvitedBy    string           `json:"invited_by"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

type CreateTeamInput struct {
	Name string `json:"name"`
}

type AddMemberInput struct {
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Permissions *Permissions `json:"permissions"`
}

// UpdateMemberInput leaves nil fields unchanged.
type UpdateMemberInput struct {
	Role        *Role        `json:"role"`
	Permissions *Permissions `json:"permissions"`
}

type InviteInput struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
