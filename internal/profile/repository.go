package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("profile not found")

func checkRowsAffectedOne(cmdTag pgconn.CommandTag) error {
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type Repository interface {
	GetByUser(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}

type postgresRepo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT user_id, name, photo_url, timezone, theme, created_at
		FROM profiles
		WHERE user_id = $1
	`

	var p Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Name,
		&p.PhotoURL,
		&p.Timezone,
		&p.Theme,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepo) Update(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles
		SET
			name = $1,
			photo_url = $2,
			timezone = $3,
			theme = $4
		WHERE user_id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query, p.Name, p.PhotoURL, p.Timezone, p.Theme, p.UserID)
	if err != nil {
		return err
	}

	return checkRowsAffectedOne(cmdTag)
}
