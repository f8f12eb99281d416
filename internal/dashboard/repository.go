package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/siza083/produtive/internal/subtask"
)

// Source is the read side the dashboard aggregates over.
type Source interface {
	// FetchUserSubtasks returns live subtasks the user is assigned to or created.
	FetchUserSubtasks(ctx context.Context, userID string) ([]subtask.Subtask, error)
	// FetchTasksWithTeamMembership returns the live tasks among taskIDs with
	// their team and full membership roster.
	FetchTasksWithTeamMembership(ctx context.Context, taskIDs []string) ([]TaskRecord, error)
	// FetchUserTimezone returns the stored zone, or nil when unset.
	FetchUserTimezone(ctx context.Context, userID string) (*string, error)
}

type postgresSource struct {
	db       *pgxpool.Pool
	subtasks subtask.Repository
}

func NewSource(db *pgxpool.Pool, subtasks subtask.Repository) Source {
	return &postgresSource{db: db, subtasks: subtasks}
}

func (s *postgresSource) FetchUserSubtasks(ctx context.Context, userID string) ([]subtask.Subtask, error) {
	subs, err := s.subtasks.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch subtasks: %w", err)
	}
	return subs, nil
}

func (s *postgresSource) FetchTasksWithTeamMembership(ctx context.Context, taskIDs []string) ([]TaskRecord, error) {
	if len(taskIDs) == 0 {
		return []TaskRecord{}, nil
	}

	query := `
		SELECT
			t.id,
			t.title,
			t.team_id,
			tm.id,
			tm.name,
			COALESCE(
				json_agg(json_build_object('user_id', m.user_id, 'status', m.status))
					FILTER (WHERE m.user_id IS NOT NULL),
				'[]'
			)
		FROM tasks t
		JOIN teams tm ON tm.id = t.team_id
		LEFT JOIN team_members m ON m.team_id = tm.id
		WHERE t.id = ANY($1::uuid[]) AND t.deleted_at IS NULL
		GROUP BY t.id, tm.id
	`

	rows, err := s.db.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer rows.Close()

	records := []TaskRecord{}
	for rows.Next() {
		var (
			rec  TaskRecord
			team TeamRecord
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.TeamID,
			&team.ID,
			&team.Name,
			&team.Members,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		rec.Team = &team
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}

	return records, nil
}

func (s *postgresSource) FetchUserTimezone(ctx context.Context, userID string) (*string, error) {
	var tz *string
	err := s.db.QueryRow(ctx, `SELECT timezone FROM profiles WHERE user_id = $1`, userID).Scan(&tz)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch timezone: %w", err)
	}
	return tz, nil
}
