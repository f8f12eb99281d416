package task

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/siza083/produtive/internal/team"
)

var ErrInvalidInput = errors.New("invalid input")

// Authorizer answers membership questions for a team. team.Service
// satisfies it.
type Authorizer interface {
	Membership(ctx context.Context, teamID, userID string) (*team.Member, error)
	Authorize(ctx context.Context, teamID, userID string, perm team.Permission) (*team.Member, error)
}

type Service interface {
	Create(ctx context.Context, userID string, in CreateTaskInput) (*Task, error)
	Get(ctx context.Context, userID, id string) (*Task, error)
	List(ctx context.Context, userID, teamID string) ([]Task, error)
	Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type service struct {
	repo  Repository
	teams Authorizer
}

func NewService(repo Repository, teams Authorizer) Service {
	return &service{repo: repo, teams: teams}
}

func (s *service) Create(ctx context.Context, userID string, in CreateTaskInput) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.TeamID == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.teams.Authorize(ctx, in.TeamID, userID, team.PermCreateTasks); err != nil {
		return nil, err
	}

	t := &Task{
		TeamID:      in.TeamID,
		Title:       title,
		Description: optional(in.Description),
		CreatedBy:   userID,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "task created", "task_id", t.ID, "team_id", t.TeamID, "by", userID)
	return t, nil
}

// Get hides tasks of teams the user does not belong to behind ErrNotFound.
func (s *service) Get(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.teams.Membership(ctx, t.TeamID, userID); err != nil {
		if errors.Is(err, team.ErrForbidden) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *service) List(ctx context.Context, userID, teamID string) ([]Task, error) {
	if teamID != "" {
		if _, err := s.teams.Membership(ctx, teamID, userID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListForUser(ctx, userID, teamID)
}

func (s *service) Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*Task, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if existing.CreatedBy != userID {
		if _, err := s.teams.Authorize(ctx, existing.TeamID, userID, team.PermCreateTasks); err != nil {
			return nil, err
		}
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		existing.Title = title
	}

	if in.Description != nil {
		existing.Description = optional(in.Description)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete is allowed for the task creator and team managers.
func (s *service) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if existing.CreatedBy != userID {
		m, err := s.teams.Membership(ctx, existing.TeamID, userID)
		if err != nil {
			return err
		}
		if !m.IsManager() {
			return team.ErrForbidden
		}
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "task deleted", "task_id", id, "by", userID)
	return nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
