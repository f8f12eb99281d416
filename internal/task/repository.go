package task

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("task not found")

func checkRowsAffectedOne(cmdTag pgconn.CommandTag) error {
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	// ListForUser returns live tasks of every team where userID holds an
	// accepted membership, optionally narrowed to one team.
	ListForUser(ctx context.Context, userID, teamID string) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	SoftDelete(ctx context.Context, id string) error
}

type postgresRepo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (team_id, title, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query, t.TeamID, t.Title, t.Description, t.CreatedBy).
		Scan(&t.ID, &t.CreatedAt)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Task, error) {
	query := `
		SELECT
			t.id,
			t.team_id,
			t.title,
			t.description,
			COALESCE(t.created_by::text, ''),
			t.created_at,
			tm.name,
			COUNT(s.id) FILTER (WHERE s.status <> 'done'),
			COUNT(s.id)
		FROM tasks t
		JOIN teams tm ON tm.id = t.team_id
		LEFT JOIN subtasks s ON s.task_id = t.id AND s.deleted_at IS NULL
		WHERE t.id = $1 AND t.deleted_at IS NULL
		GROUP BY t.id, tm.name
	`

	var t Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.TeamID,
		&t.Title,
		&t.Description,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.TeamName,
		&t.OpenSubtasks,
		&t.TotalSubtasks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &t, nil
}

func (r *postgresRepo) ListForUser(ctx context.Context, userID, teamID string) ([]Task, error) {
	query := `
		SELECT
			t.id,
			t.team_id,
			t.title,
			t.description,
			COALESCE(t.created_by::text, ''),
			t.created_at,
			tm.name,
			COUNT(s.id) FILTER (WHERE s.status <> 'done'),
			COUNT(s.id)
		FROM tasks t
		JOIN team_members m ON m.team_id = t.team_id
			AND m.user_id = $1
			AND m.status = 'accepted'
		JOIN teams tm ON tm.id = t.team_id
		LEFT JOIN subtasks s ON s.task_id = t.id AND s.deleted_at IS NULL
		WHERE t.deleted_at IS NULL
			AND ($2 = '' OR t.team_id::text = $2)
		GROUP BY t.id, tm.name
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID,
			&t.TeamID,
			&t.Title,
			&t.Description,
			&t.CreatedBy,
			&t.CreatedAt,
			&t.TeamName,
			&t.OpenSubtasks,
			&t.TotalSubtasks,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *postgresRepo) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE tasks
		SET
			title = $1,
			description = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	cmdTag, err := r.db.Exec(ctx, query, t.Title, t.Description, t.ID)
	if err != nil {
		return err
	}

	return checkRowsAffectedOne(cmdTag)
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE tasks
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	return checkRowsAffectedOne(cmdTag)
}
