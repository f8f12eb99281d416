package team

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/siza083/produtive/internal/user"
)

var (
	ErrEmptyName      = errors.New("team name is required")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("not allowed")
	ErrOwnerImmutable = errors.New("the team owner cannot be changed or removed")
	ErrInviteExpired  = errors.New("invitation expired")
	ErrInviteMismatch = errors.New("invitation was sent to a different email")
	ErrUserNotFound   = errors.New("no user registered with this email")
)

const DefaultInviteTTL = 7 * 24 * time.Hour

// UserDirectory resolves users for membership management.
type UserDirectory interface {
	Get(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service interface {
	Create(ctx context.Context, userID string, input CreateTeamInput) (*Team, error)
	ListForUser(ctx context.Context, userID string) ([]Team, error)
	Delete(ctx context.Context, userID, teamID string) error

	// Membership returns the user's accepted membership or ErrForbidden.
	Membership(ctx context.Context, teamID, userID string) (*Member, error)
	// Authorize is Membership plus a permission check.
	Authorize(ctx context.Context, teamID, userID string, perm Permission) (*Member, error)

	ListMembers(ctx context.Context, userID, teamID string) ([]Member, error)
	AddMemberByEmail(ctx context.Context, actorID, teamID string, in AddMemberInput) (*Member, error)
	UpdateMemberAccess(ctx context.Context, actorID, teamID, targetID string, in UpdateMemberInput) (*Member, error)
	RemoveMember(ctx context.Context, actorID, teamID, targetID string) error

	Invite(ctx context.Context, actorID, teamID string, in InviteInput) (*Invitation, string, error)
	AcceptInvite(ctx context.Context, userID, token string) (*Invitation, error)
}

type Options struct {
	AppURL    string
	InviteTTL time.Duration
	Mailer    Mailer
	Now       func() time.Time
}

type service struct {
	repo      Repository
	users     UserDirectory
	mailer    Mailer
	appURL    string
	inviteTTL time.Duration
	now       func() time.Time
}

func NewService(repo Repository, users UserDirectory, opts Options) Service {
	s := &service{
		repo:      repo,
		users:     users,
		mailer:    opts.Mailer,
		appURL:    strings.TrimRight(opts.AppURL, "/"),
		inviteTTL: opts.InviteTTL,
		now:       opts.Now,
	}
	if s.mailer == nil {
		s.mailer = LogMailer{}
	}
	if s.inviteTTL <= 0 {
		s.inviteTTL = DefaultInviteTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, userID string, input CreateTeamInput) (*Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	t := &Team{
		Name:      name,
		CreatedBy: userID,
	}

	if err := s.repo.CreateWithOwner(ctx, t); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "team created", "team_id", t.ID, "owner_id", userID)
	return t, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Team, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID, teamID string) error {
	m, err := s.Membership(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if m.Role != RoleOwner {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, teamID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "team deleted", "team_id", teamID, "by", userID)
	return nil
}

func (s *service) Membership(ctx context.Context, teamID, userID string) (*Member, error) {
	m, err := s.repo.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !m.IsAccepted() {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *service) Authorize(ctx context.Context, teamID, userID string, perm Permission) (*Member, error) {
	m, err := s.Membership(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Can(perm) {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *service) ListMembers(ctx context.Context, userID, teamID string) ([]Member, error) {
	if _, err := s.Membership(ctx, teamID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, teamID)
}

// assignableRole rejects owner: ownership is only granted at team creation.
func assignableRole(r Role) (Role, error) {
	if r == "" {
		return RoleMember, nil
	}
	if r != RoleAdmin && r != RoleMember {
		return "", ErrInvalidInput
	}
	return r, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidInput
	}
	return email, nil
}

func (s *service) AddMemberByEmail(ctx context.Context, actorID, teamID string, in AddMemberInput) (*Member, error) {
	actor, err := s.Authorize(ctx, teamID, actorID, PermInvite)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	role, err := assignableRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role == RoleAdmin && actor.Role != RoleOwner {
		return nil, ErrForbidden
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	perms := DefaultMemberPermissions()
	if in.Permissions != nil {
		perms = *in.Permissions
	}

	now := s.now()
	m := &Member{
		TeamID:       teamID,
		UserID:       u.ID,
		Email:        u.Email,
		Role:         role,
		Status:       StatusAccepted,
		Permissions:  perms,
		InvitedEmail: &email,
		JoinedAt:     &now,
	}

	existing, err := s.repo.GetMember(ctx, teamID, u.ID)
	switch {
	case err == nil && existing.IsAccepted():
		return nil, ErrAlreadyMember
	case err == nil:
		// pending row left by an earlier invite: promote it
		if err := s.repo.UpdateMember(ctx, m); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrMemberNotFound):
		if err := s.repo.InsertMember(ctx, m); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	slog.InfoContext(ctx, "member added", "team_id", teamID, "user_id", u.ID, "role", m.Role, "by", actorID)
	return m, nil
}

func (s *service) UpdateMemberAccess(ctx context.Context, actorID, teamID, targetID string, in UpdateMemberInput) (*Member, error) {
	actor, err := s.Membership(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() {
		return nil, ErrForbidden
	}

	target, err := s.repo.GetMember(ctx, teamID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == RoleOwner {
		return nil, ErrOwnerImmutable
	}
	// admins manage members; only the owner manages admins
	if target.Role == RoleAdmin && actor.Role != RoleOwner {
		return nil, ErrForbidden
	}

	if in.Role != nil {
		role, err := assignableRole(*in.Role)
		if err != nil {
			return nil, err
		}
		if role == RoleAdmin && actor.Role != RoleOwner {
			return nil, ErrForbidden
		}
		target.Role = role
	}

	if in.Permissions != nil {
		target.Permissions = *in.Permissions
	}

	if err := s.repo.UpdateMember(ctx, target); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "member access updated", "team_id", teamID, "user_id", targetID, "role", target.Role, "by", actorID)
	return target, nil
}

func (s *service) RemoveMember(ctx context.Context, actorID, teamID, targetID string) error {
	actor, err := s.Membership(ctx, teamID, actorID)
	if err != nil {
		return err
	}

	target, err := s.repo.GetMember(ctx, teamID, targetID)
	if err != nil {
		return err
	}
	if target.Role == RoleOwner {
		return ErrOwnerImmutable
	}

	leaving := actorID == targetID
	if !leaving {
		if !actor.Can(PermRemoveMembers) {
			return ErrForbidden
		}
		if target.Role == RoleAdmin && actor.Role != RoleOwner {
			return ErrForbidden
		}
	}

	if err := s.repo.RemoveMember(ctx, teamID, targetID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "member removed", "team_id", teamID, "user_id", targetID, "by", actorID)
	return nil
}

// ensureNotMember rejects inviting an email that already has an accepted
// membership in the team.
func (s *service) ensureNotMember(ctx context.Context, teamID, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}

	m, err := s.repo.GetMember(ctx, teamID, u.ID)
	switch {
	case err == nil && m.IsAccepted():
		return ErrAlreadyMember
	case err == nil, errors.Is(err, ErrMemberNotFound):
		return nil
	default:
		return err
	}
}

func (s *service) inviteLink(token string) string {
	return s.appURL + "/accept-invite?token=" + url.QueryEscape(token)
}

// Invite issues (or reuses) a pending invitation and hands the link to the
// mailer. A mailer failure is logged and the invitation is still returned.
func (s *service) Invite(ctx context.Context, actorID, teamID string, in InviteInput) (*Invitation, string, error) {
	actor, err := s.Authorize(ctx, teamID, actorID, PermInvite)
	if err != nil {
		return nil, "", err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}

	role, err := assignableRole(in.Role)
	if err != nil {
		return nil, "", err
	}
	if role == RoleAdmin && actor.Role != RoleOwner {
		return nil, "", ErrForbidden
	}

	if err := s.ensureNotMember(ctx, teamID, email); err != nil {
		return nil, "", err
	}

	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return nil, "", err
	}

	expires := s.now().Add(s.inviteTTL)
	inv := &Invitation{
		TeamID:       teamID,
		InvitedEmail: email,
		Role:         role,
		Token:        uuid.NewString(),
		InvitedBy:    actorID,
		ExpiresAt:    &expires,
	}

	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		if !errors.Is(err, ErrDuplicateInvite) {
			return nil, "", err
		}
		inv, err = s.repo.FindPendingInvitation(ctx, teamID, email)
		if err != nil {
			return nil, "", err
		}
	}

	link := s.inviteLink(inv.Token)

	inviterName := ""
	if u, err := s.users.Get(ctx, actorID); err == nil {
		inviterName = u.DisplayName()
		if inviterName == "" {
			inviterName = strings.Split(u.Email, "@")[0]
		}
	}

	err = s.mailer.SendInvite(ctx, InviteMessage{
		To:          email,
		TeamName:    t.Name,
		InviterName: inviterName,
		Role:        role,
		Link:        link,
	})
	if err != nil {
		slog.WarnContext(ctx, "invite email not sent", "team_id", teamID, "to", email, "error", err)
	}

	slog.InfoContext(ctx, "invitation issued", "team_id", teamID, "invitation_id", inv.ID, "by", actorID)
	return inv, link, nil
}

func (s *service) AcceptInvite(ctx context.Context, userID, token string) (*Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidInput
	}

	inv, err := s.repo.FindInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != InvitationPending {
		return nil, ErrInviteNotFound
	}
	if inv.Expired(s.now()) {
		return nil, ErrInviteExpired
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(u.Email, inv.InvitedEmail) {
		return nil, ErrInviteMismatch
	}

	if err := s.repo.AcceptInvitation(ctx, inv, userID); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invitation accepted", "team_id", inv.TeamID, "user_id", userID)
	return inv, nil
}
