package subtask

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/siza083/produtive/internal/calendar"
	"github.com/siza083/produtive/internal/task"
	"github.com/siza083/produtive/internal/team"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidDueDate  = errors.New("due_date must be YYYY-MM-DD")
	ErrInvalidStatus   = errors.New("unknown status")
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidAssignee = errors.New("assignee is not a member of this team")
)

// TaskReader loads a parent task, enforcing that the caller can see it.
// task.Service satisfies it.
type TaskReader interface {
	Get(ctx context.Context, userID, id string) (*task.Task, error)
}

type Authorizer interface {
	Membership(ctx context.Context, teamID, userID string) (*team.Member, error)
	Authorize(ctx context.Context, teamID, userID string, perm team.Permission) (*team.Member, error)
}

// TimezoneLookup returns the user's stored IANA zone or nil.
type TimezoneLookup interface {
	Timezone(ctx context.Context, userID string) (*string, error)
}

type Service interface {
	Create(ctx context.Context, userID string, in CreateSubtaskInput) (*Subtask, error)
	Get(ctx context.Context, userID, id string) (*Subtask, error)
	ListByTask(ctx context.Context, userID, taskID string) ([]Subtask, error)
	Update(ctx context.Context, userID, id string, in UpdateSubtaskInput) (*Subtask, error)
	// ToggleStatus flips done <-> open.
	ToggleStatus(ctx context.Context, userID, id string) (*Subtask, error)
	Delete(ctx context.Context, userID, id string) error
	// ListCurrentWeek returns the user's visible subtasks due within the
	// current ISO week of their timezone.
	ListCurrentWeek(ctx context.Context, userID string) ([]Subtask, error)
}

type Options struct {
	DefaultZone string
	Now         func() time.Time
}

type service struct {
	repo        Repository
	tasks       TaskReader
	teams       Authorizer
	timezones   TimezoneLookup
	defaultZone string
	now         func() time.Time
}

func NewService(repo Repository, tasks TaskReader, teams Authorizer, timezones TimezoneLookup, opts Options) Service {
	s := &service{
		repo:        repo,
		tasks:       tasks,
		teams:       teams,
		timezones:   timezones,
		defaultZone: opts.DefaultZone,
		now:         opts.Now,
	}
	if s.defaultZone == "" {
		s.defaultZone = calendar.DefaultZone
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
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

func validateDueDate(d *string) error {
	if d != nil && !calendar.ValidDate(*d) {
		return ErrInvalidDueDate
	}
	return nil
}

// checkAssignee requires the assign permission to hand work to someone else,
// and the assignee must be an accepted member of the team.
func (s *service) checkAssignee(ctx context.Context, teamID, userID string, assignee *string) error {
	if assignee == nil || *assignee == userID {
		return nil
	}
	if _, err := s.teams.Authorize(ctx, teamID, userID, team.PermAssign); err != nil {
		return err
	}
	if _, err := s.teams.Membership(ctx, teamID, *assignee); err != nil {
		if errors.Is(err, team.ErrForbidden) {
			return ErrInvalidAssignee
		}
		return err
	}
	return nil
}

func (s *service) Create(ctx context.Context, userID string, in CreateSubtaskInput) (*Subtask, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.TaskID == "" {
		return nil, ErrInvalidInput
	}

	dueDate := optional(in.DueDate)
	if err := validateDueDate(dueDate); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = StatusOpen
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	parent, err := s.tasks.Get(ctx, userID, in.TaskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.teams.Authorize(ctx, parent.TeamID, userID, team.PermCreateSubtasks); err != nil {
		return nil, err
	}

	assignee := optional(in.AssigneeID)
	if err := s.checkAssignee(ctx, parent.TeamID, userID, assignee); err != nil {
		return nil, err
	}

	sub := &Subtask{
		TaskID:      parent.ID,
		Title:       title,
		Description: optional(in.Description),
		DueDate:     dueDate,
		AssigneeID:  assignee,
		Status:      StatusOpen,
		Priority:    priority,
		CreatedBy:   userID,
	}
	sub.setStatus(status, s.now())

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "subtask created", "subtask_id", sub.ID, "task_id", sub.TaskID, "by", userID)
	return sub, nil
}

// load returns the subtask and its parent task, or ErrNotFound when the
// caller cannot see the parent.
func (s *service) load(ctx context.Context, userID, id string) (*Subtask, *task.Task, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	parent, err := s.tasks.Get(ctx, userID, sub.TaskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return sub, parent, nil
}

func (s *service) Get(ctx context.Context, userID, id string) (*Subtask, error) {
	sub, _, err := s.load(ctx, userID, id)
	return sub, err
}

func (s *service) ListByTask(ctx context.Context, userID, taskID string) ([]Subtask, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}

func (s *service) Update(ctx context.Context, userID, id string, in UpdateSubtaskInput) (*Subtask, error) {
	existing, parent, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
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

	if in.DueDate != nil {
		due := optional(in.DueDate)
		if err := validateDueDate(due); err != nil {
			return nil, err
		}
		existing.DueDate = due
	}

	if in.AssigneeID != nil {
		assignee := optional(in.AssigneeID)
		if !samePtr(assignee, existing.AssigneeID) {
			if err := s.checkAssignee(ctx, parent.TeamID, userID, assignee); err != nil {
				return nil, err
			}
		}
		existing.AssigneeID = assignee
	}

	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		existing.Priority = *in.Priority
	}

	wasDone := existing.Status.IsDone()
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		existing.setStatus(*in.Status, s.now())
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	if !wasDone && existing.Status.IsDone() {
		slog.InfoContext(ctx, "subtask completed", "subtask_id", existing.ID, "by", userID)
	}
	return existing, nil
}

func (s *service) ToggleStatus(ctx context.Context, userID, id string) (*Subtask, error) {
	existing, _, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next := StatusDone
	if existing.Status.IsDone() {
		next = StatusOpen
	}
	existing.setStatus(next, s.now())

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "subtask status toggled", "subtask_id", existing.ID, "status", existing.Status, "by", userID)
	return existing, nil
}

// Delete is allowed for the creator, the assignee and team managers.
func (s *service) Delete(ctx context.Context, userID, id string) error {
	existing, parent, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}

	involved := existing.CreatedBy == userID ||
		(existing.AssigneeID != nil && *existing.AssigneeID == userID)
	if !involved {
		m, err := s.teams.Membership(ctx, parent.TeamID, userID)
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

	slog.InfoContext(ctx, "subtask deleted", "subtask_id", id, "by", userID)
	return nil
}

func (s *service) ListCurrentWeek(ctx context.Context, userID string) ([]Subtask, error) {
	tz, err := s.timezones.Timezone(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := calendar.ResolveLocation(tz, s.defaultZone)
	start, end := calendar.Week(s.now(), loc)
	return s.repo.ListDueBetween(ctx, userID, start, end)
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
