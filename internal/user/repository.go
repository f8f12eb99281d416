package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

type repo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) UserRepository {
	return &repo{db: db}
}

// Create inserts the user together with its profile row.
func (r *repo) Create(ctx context.Context, u *User) error {
	query := `
		WITH inserted AS (
			INSERT INTO users (first_name, last_name, email, password)
			VALUES ($1, $2, LOWER($3), $4)
			RETURNING id, created_at, updated_at
		), profile AS (
			INSERT INTO profiles (user_id, name)
			SELECT id, NULLIF(TRIM($1 || ' ' || $2), '') FROM inserted
		)
		SELECT id, created_at, updated_at FROM inserted
	`
	row := r.db.QueryRow(ctx, query, u.FirstName, u.LastName, u.Email, u.Password)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, password, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
		LIMIT 1
	`
	return r.scanOne(ctx, query, email)
}

func (r *repo) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, password, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *repo) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	row := r.db.QueryRow(ctx, query, arg)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
