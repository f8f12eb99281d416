package subtask

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("subtask not found")

func checkRowsAffectedOne(cmdTag pgconn.CommandTag) error {
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type Repository interface {
	Create(ctx context.Context, s *Subtask) error
	GetByID(ctx context.Context, id string) (*Subtask, error)
	ListByTask(ctx context.Context, taskID string) ([]Subtask, error)
	// ListForUser returns live subtasks the user is assigned to or created.
	ListForUser(ctx context.Context, userID string) ([]Subtask, error)
	// ListDueBetween is ListForUser narrowed to subtasks due in [from, to]
	// on teams where the user is an accepted member.
	ListDueBetween(ctx context.Context, userID, from, to string) ([]Subtask, error)
	Update(ctx context.Context, s *Subtask) error
	SoftDelete(ctx context.Context, id string) error
}

type postgresRepo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepo{db: db}
}

const columns = `
	s.id,
	s.task_id,
	s.title,
	s.description,
	to_char(s.due_date, 'YYYY-MM-DD'),
	s.assignee_id::text,
	s.status,
	s.completed_at,
	s.priority::text,
	COALESCE(s.created_by::text, ''),
	s.created_at,
	s.deleted_at
`

func scan(row pgx.Row) (*Subtask, error) {
	var s Subtask
	err := row.Scan(
		&s.ID,
		&s.TaskID,
		&s.Title,
		&s.Description,
		&s.DueDate,
		&s.AssigneeID,
		&s.Status,
		&s.CompletedAt,
		&s.Priority,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collect(rows pgx.Rows) ([]Subtask, error) {
	defer rows.Close()

	subtasks := []Subtask{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subtasks, nil
}

func (r *postgresRepo) Create(ctx context.Context, s *Subtask) error {
	query := `
		INSERT INTO subtasks (
			task_id,
			title,
			description,
			due_date,
			assignee_id,
			status,
			completed_at,
			priority,
			created_by
		)
		VALUES ($1, $2, $3, $4::date, $5::uuid, $6, $7, $8::subtask_priority, $9)
		RETURNING id, created_at
	`

	return r.db.QueryRow(
		ctx,
		query,
		s.TaskID,
		s.Title,
		s.Description,
		s.DueDate,
		s.AssigneeID,
		s.Status,
		s.CompletedAt,
		s.Priority,
		s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Subtask, error) {
	query := `
		SELECT ` + columns + `
		FROM subtasks s
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`

	s, err := scan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListByTask(ctx context.Context, taskID string) ([]Subtask, error) {
	query := `
		SELECT ` + columns + `
		FROM subtasks s
		WHERE s.task_id = $1 AND s.deleted_at IS NULL
		ORDER BY s.created_at
	`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) ListForUser(ctx context.Context, userID string) ([]Subtask, error) {
	query := `
		SELECT ` + columns + `
		FROM subtasks s
		WHERE (s.assignee_id = $1 OR s.created_by = $1)
			AND s.deleted_at IS NULL
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) ListDueBetween(ctx context.Context, userID, from, to string) ([]Subtask, error) {
	query := `
		SELECT ` + columns + `
		FROM subtasks s
		JOIN tasks t ON t.id = s.task_id AND t.deleted_at IS NULL
		JOIN team_members m ON m.team_id = t.team_id
			AND m.user_id = $1
			AND m.status = 'accepted'
		WHERE (s.assignee_id = $1 OR s.created_by = $1)
			AND s.deleted_at IS NULL
			AND s.due_date BETWEEN $2::date AND $3::date
		ORDER BY s.due_date, s.title
	`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *postgresRepo) Update(ctx context.Context, s *Subtask) error {
	query := `
		UPDATE subtasks
		SET
			title = $1,
			description = $2,
			due_date = $3::date,
			assignee_id = $4::uuid,
			status = $5,
			completed_at = $6,
			priority = $7::subtask_priority
		WHERE id = $8 AND deleted_at IS NULL
	`

	cmdTag, err := r.db.Exec(
		ctx,
		query,
		s.Title,
		s.Description,
		s.DueDate,
		s.AssigneeID,
		s.Status,
		s.CompletedAt,
		s.Priority,
		s.ID,
	)
	if err != nil {
		return err
	}

	return checkRowsAffectedOne(cmdTag)
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE subtasks
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	return checkRowsAffectedOne(cmdTag)
}
