package subtask

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/siza083/produtive/internal/task"
	"github.com/siza083/produtive/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	subtasks map[string]*Subtask
	nextID   int

	gotFrom, gotTo string
}

func (f *fakeRepo) Create(ctx context.Context, s *Subtask) error {
	f.nextID++
	s.ID = fmt.Sprintf("sub-%d", f.nextID)
	cp := *s
	f.subtasks[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Subtask, error) {
	s, ok := f.subtasks[id]
	if !ok || s.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ListByTask(ctx context.Context, taskID string) ([]Subtask, error) {
	out := []Subtask{}
	for _, s := range f.subtasks {
		if s.TaskID == taskID && s.DeletedAt == nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string) ([]Subtask, error) {
	return nil, errors.New("not used")
}

func (f *fakeRepo) ListDueBetween(ctx context.Context, userID, from, to string) ([]Subtask, error) {
	f.gotFrom, f.gotTo = from, to
	return []Subtask{}, nil
}

func (f *fakeRepo) Update(ctx context.Context, s *Subtask) error {
	if _, ok := f.subtasks[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	f.subtasks[s.ID] = &cp
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id string) error {
	s, ok := f.subtasks[id]
	if !ok || s.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

type fakeTeams map[string]*team.Member

func (f fakeTeams) Membership(ctx context.Context, teamID, userID string) (*team.Member, error) {
	m, ok := f[userID]
	if !ok || !m.IsAccepted() {
		return nil, team.ErrForbidden
	}
	return m, nil
}

func (f fakeTeams) Authorize(ctx context.Context, teamID, userID string, perm team.Permission) (*team.Member, error) {
	m, err := f.Membership(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Can(perm) {
		return nil, team.ErrForbidden
	}
	return m, nil
}

// fakeTasks exposes one task on team-1 to accepted members only.
type fakeTasks struct {
	teams fakeTeams
}

func (f fakeTasks) Get(ctx context.Context, userID, id string) (*task.Task, error) {
	if id != "task-1" {
		return nil, task.ErrNotFound
	}
	if _, err := f.teams.Membership(ctx, "team-1", userID); err != nil {
		return nil, task.ErrNotFound
	}
	return &task.Task{ID: "task-1", TeamID: "team-1"}, nil
}

type fakeTimezones map[string]string

func (f fakeTimezones) Timezone(ctx context.Context, userID string) (*string, error) {
	tz, ok := f[userID]
	if !ok {
		return nil, nil
	}
	return &tz, nil
}

type fixture struct {
	svc  Service
	repo *fakeRepo
	now  time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo: &fakeRepo{subtasks: map[string]*Subtask{}},
		now:  time.Date(2024, 1, 17, 15, 0, 0, 0, time.UTC),
	}
	teams := fakeTeams{
		"owner":  {UserID: "owner", Role: team.RoleOwner, Status: team.StatusAccepted},
		"member": {UserID: "member", Role: team.RoleMember, Status: team.StatusAccepted, Permissions: team.DefaultMemberPermissions()},
		"solo":   {UserID: "solo", Role: team.RoleMember, Status: team.StatusAccepted, Permissions: team.Permissions{CreateSubtasks: true}},
		"viewer": {UserID: "viewer", Role: team.RoleMember, Status: team.StatusAccepted},
	}
	f.svc = NewService(f.repo, fakeTasks{teams: teams}, teams, fakeTimezones{"tokyo": "Asia/Tokyo"}, Options{
		Now: func() time.Time { return f.now },
	})
	return f
}

func strPtr(s string) *string { return &s }

func TestCreate_Defaults(t *testing.T) {
	f := newFixture()

	sub, err := f.svc.Create(context.Background(), "member", CreateSubtaskInput{
		TaskID:  "task-1",
		Title:   " Revisar contrato ",
		DueDate: strPtr("2024-01-17"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Revisar contrato", sub.Title)
	assert.Equal(t, StatusOpen, sub.Status)
	assert.Equal(t, PriorityMedium, sub.Priority)
	assert.Nil(t, sub.CompletedAt)
	assert.Equal(t, "member", sub.CreatedBy)
}

func TestCreate_DoneStampsCompletedAt(t *testing.T) {
	f := newFixture()

	sub, err := f.svc.Create(context.Background(), "member", CreateSubtaskInput{TaskID: "task-1", Title: "x", Status: StatusDone})
	require.NoError(t, err)
	require.NotNil(t, sub.CompletedAt)
	assert.True(t, sub.CompletedAt.Equal(f.now))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		user string
		in   CreateSubtaskInput
		err  error
	}{
		{"empty title", "member", CreateSubtaskInput{TaskID: "task-1"}, ErrInvalidInput},
		{"bad date", "member", CreateSubtaskInput{TaskID: "task-1", Title: "x", DueDate: strPtr("17/01/2024")}, ErrInvalidDueDate},
		{"bad status", "member", CreateSubtaskInput{TaskID: "task-1", Title: "x", Status: "archived"}, ErrInvalidStatus},
		{"bad priority", "member", CreateSubtaskInput{TaskID: "task-1", Title: "x", Priority: "urgent"}, ErrInvalidPriority},
		{"unknown task", "member", CreateSubtaskInput{TaskID: "task-9", Title: "x"}, task.ErrNotFound},
		{"no create permission", "viewer", CreateSubtaskInput{TaskID: "task-1", Title: "x"}, team.ErrForbidden},
		{"assign without permission", "solo", CreateSubtaskInput{TaskID: "task-1", Title: "x", AssigneeID: strPtr("member")}, team.ErrForbidden},
		{"assignee outside team", "member", CreateSubtaskInput{TaskID: "task-1", Title: "x", AssigneeID: strPtr("stranger")}, ErrInvalidAssignee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.user, tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	// self-assignment needs no assign permission
	_, err := f.svc.Create(ctx, "solo", CreateSubtaskInput{TaskID: "task-1", Title: "x", AssigneeID: strPtr("solo")})
	assert.NoError(t, err)
}

func TestUpdate_StatusMaintainsCompletedAt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub, err := f.svc.Create(ctx, "member", CreateSubtaskInput{TaskID: "task-1", Title: "x"})
	require.NoError(t, err)

	inProgress := StatusInProgress
	sub, err = f.svc.Update(ctx, "member", sub.ID, UpdateSubtaskInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, sub.CompletedAt)

	done := StatusDone
	sub, err = f.svc.Update(ctx, "member", sub.ID, UpdateSubtaskInput{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, sub.CompletedAt)
	first := *sub.CompletedAt

	// re-saving done keeps the original completion time
	f.now = f.now.Add(time.Hour)
	sub, err = f.svc.Update(ctx, "member", sub.ID, UpdateSubtaskInput{Status: &done})
	require.NoError(t, err)
	assert.True(t, sub.CompletedAt.Equal(first))

	waiting := StatusWaitingClient
	sub, err = f.svc.Update(ctx, "member", sub.ID, UpdateSubtaskInput{Status: &waiting})
	require.NoError(t, err)
	assert.Nil(t, sub.CompletedAt)
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub, err := f.svc.Create(ctx, "member", CreateSubtaskInput{
		TaskID:      "task-1",
		Title:       "x",
		Description: strPtr("notes"),
		DueDate:     strPtr("2024-01-20"),
		AssigneeID:  strPtr("member"),
	})
	require.NoError(t, err)

	high := PriorityHigh
	sub, err = f.svc.Update(ctx, "member", sub.ID, UpdateSubtaskInput{Priority: &high, DueDate: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, sub.Priority)
	assert.Nil(t, sub.DueDate)
	require.NotNil(t, sub.Description)
	assert.Equal(t, "notes", *sub.Description)
	require.NotNil(t, sub.AssigneeID)

	sub, err = f.svc.Update(ctx, "member", sub.ID, UpdateSubtaskInput{AssigneeID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, sub.AssigneeID)

	_, err = f.svc.Update(ctx, "solo", sub.ID, UpdateSubtaskInput{AssigneeID: strPtr("owner")})
	assert.ErrorIs(t, err, team.ErrForbidden)

	_, err = f.svc.Update(ctx, "stranger", sub.ID, UpdateSubtaskInput{Title: strPtr("y")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub, err := f.svc.Create(ctx, "member", CreateSubtaskInput{TaskID: "task-1", Title: "x", Status: StatusTodo})
	require.NoError(t, err)

	sub, err = f.svc.ToggleStatus(ctx, "member", sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, sub.Status)
	assert.NotNil(t, sub.CompletedAt)

	sub, err = f.svc.ToggleStatus(ctx, "member", sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, sub.Status)
	assert.Nil(t, sub.CompletedAt)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub, err := f.svc.Create(ctx, "member", CreateSubtaskInput{TaskID: "task-1", Title: "x"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, "viewer", sub.ID), team.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, "owner", sub.ID))

	_, err = f.svc.Get(ctx, "member", sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	subs, err := f.svc.ListByTask(ctx, "member", "task-1")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestListCurrentWeek_UsesUserTimezone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Sunday 20:00 UTC is already Monday in Tokyo and still Sunday in São Paulo
	f.now = time.Date(2024, 1, 21, 20, 0, 0, 0, time.UTC)

	_, err := f.svc.ListCurrentWeek(ctx, "tokyo")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-22", f.repo.gotFrom)
	assert.Equal(t, "2024-01-28", f.repo.gotTo)

	_, err = f.svc.ListCurrentWeek(ctx, "member")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", f.repo.gotFrom)
	assert.Equal(t, "2024-01-21", f.repo.gotTo)
}
