package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("team not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInviteNotFound  = errors.New("invitation not found")
	ErrDuplicateInvite = errors.New("a pending invitation already exists for this email")
	ErrAlreadyMember   = errors.New("user is already a member of this team")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type Repository interface {
	CreateWithOwner(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, teamID string) (*Team, error)
	ListForUser(ctx context.Context, userID string) ([]Team, error)
	Delete(ctx context.Context, teamID string) error

	GetMember(ctx context.Context, teamID, userID string) (*Member, error)
	ListMembers(ctx context.Context, teamID string) ([]Member, error)
	InsertMember(ctx context.Context, m *Member) error
	UpdateMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, teamID, userID string) error

	CreateInvitation(ctx context.Context, inv *Invitation) error
	FindPendingInvitation(ctx context.Context, teamID, email string) (*Invitation, error)
	FindInvitationByToken(ctx context.Context, token string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, inv *Invitation, userID string) error
}

type postgresRepo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepo{db: db}
}

// CreateWithOwner inserts the team and the creator's accepted owner
// membership in one transaction.
func (r *postgresRepo) CreateWithOwner(ctx context.Context, t *Team) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO teams (name, created_by)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, t.Name, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert team: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id, role, status, joined_at)
			VALUES ($1, $2, 'owner', 'accepted', now())
		`, t.ID, t.CreatedBy)
		if err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}

		t.Role = RoleOwner
		t.Status = StatusAccepted
		return nil
	})
}

func (r *postgresRepo) GetByID(ctx context.Context, teamID string) (*Team, error) {
	var t Team
	var createdBy *string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_by, created_at
		FROM teams
		WHERE id = $1
	`, teamID).Scan(&t.ID, &t.Name, &createdBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	return &t, nil
}

func (r *postgresRepo) ListForUser(ctx context.Context, userID string) ([]Team, error) {
	query := `
		SELECT t.id, t.name, COALESCE(t.created_by::text, ''), t.created_at, m.role, m.status
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1 AND m.status = 'accepted'
		ORDER BY t.name
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.Role, &t.Status); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *postgresRepo) Delete(ctx context.Context, teamID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const memberColumns = `
	m.team_id, m.user_id, u.email, p.name, m.role, m.status,
	m.permissions, m.invited_email, m.joined_at
`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.TeamID,
		&m.UserID,
		&m.Email,
		&m.Name,
		&m.Role,
		&m.Status,
		&m.Permissions,
		&m.InvitedEmail,
		&m.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresRepo) GetMember(ctx context.Context, teamID, userID string) (*Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.team_id = $1 AND m.user_id = $2
	`

	m, err := scanMember(r.db.QueryRow(ctx, query, teamID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) ListMembers(ctx context.Context, teamID string) ([]Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.team_id = $1
		ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, u.email
	`

	rows, err := r.db.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *postgresRepo) InsertMember(ctx context.Context, m *Member) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, status, permissions, invited_email, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.TeamID, m.UserID, m.Role, m.Status, m.Permissions, m.InvitedEmail, m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *postgresRepo) UpdateMember(ctx context.Context, m *Member) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE team_members
		SET role = $1, status = $2, permissions = $3, joined_at = $4
		WHERE team_id = $5 AND user_id = $6
	`, m.Role, m.Status, m.Permissions, m.JoinedAt, m.TeamID, m.UserID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM team_members
		WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

const invitationColumns = `
	id, team_id, invited_email, role, status, invite_token,
	COALESCE(invited_by::text, ''), expires_at, created_at
`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	err := row.Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.InvitedEmail,
		&inv.Role,
		&inv.Status,
		&inv.Token,
		&inv.InvitedBy,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *postgresRepo) CreateInvitation(ctx context.Context, inv *Invitation) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO team_invitations (team_id, invited_email, role, status, invite_token, invited_by, expires_at)
		VALUES ($1, LOWER($2), $3, 'pending', $4, $5, $6)
		RETURNING id, status, created_at
	`, inv.TeamID, inv.InvitedEmail, inv.Role, inv.Token, inv.InvitedBy, inv.ExpiresAt).
		Scan(&inv.ID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateInvite
		}
		return err
	}
	return nil
}

func (r *postgresRepo) FindPendingInvitation(ctx context.Context, teamID, email string) (*Invitation, error) {
	return scanInvitation(r.db.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM team_invitations
		WHERE team_id = $1 AND LOWER(invited_email) = LOWER($2) AND status = 'pending'
		LIMIT 1
	`, teamID, email))
}

func (r *postgresRepo) FindInvitationByToken(ctx context.Context, token string) (*Invitation, error) {
	return scanInvitation(r.db.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM team_invitations
		WHERE invite_token = $1
	`, token))
}

// AcceptInvitation upserts an accepted membership for userID and marks the
// invitation accepted in one transaction. An existing membership keeps its
// stored permissions.
func (r *postgresRepo) AcceptInvitation(ctx context.Context, inv *Invitation, userID string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE team_invitations
			SET status = 'accepted'
			WHERE id = $1 AND status = 'pending'
		`, inv.ID)
		if err != nil {
			return fmt.Errorf("mark invitation accepted: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrInviteNotFound
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id, role, status, permissions, invited_email, joined_at)
			VALUES ($1, $2, $3, 'accepted', $4, $5, now())
			ON CONFLICT (team_id, user_id) DO UPDATE
			SET status = 'accepted',
			    joined_at = COALESCE(team_members.joined_at, now())
		`, inv.TeamID, userID, inv.Role, DefaultMemberPermissions(), inv.InvitedEmail)
		if err != nil {
			return fmt.Errorf("upsert membership: %w", err)
		}

		inv.Status = InvitationAccepted
		return nil
	})
}
