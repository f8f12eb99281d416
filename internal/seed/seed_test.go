package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siza083/produtive/internal/subtask"
	"github.com/siza083/produtive/internal/task"
	"github.com/siza083/produtive/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeams struct {
	team.Service
	created []team.CreateTeamInput
}

func (f *fakeTeams) Create(ctx context.Context, userID string, in team.CreateTeamInput) (*team.Team, error) {
	f.created = append(f.created, in)
	return &team.Team{ID: "team-1", Name: in.Name, CreatedBy: userID}, nil
}

type fakeTasks struct {
	task.Service
	created []task.CreateTaskInput
}

func (f *fakeTasks) Create(ctx context.Context, userID string, in task.CreateTaskInput) (*task.Task, error) {
	f.created = append(f.created, in)
	return &task.Task{ID: "task-" + in.Title, TeamID: in.TeamID, Title: in.Title}, nil
}

type fakeSubtasks struct {
	subtask.Service
	created []subtask.CreateSubtaskInput
	err     error
}

func (f *fakeSubtasks) Create(ctx context.Context, userID string, in subtask.CreateSubtaskInput) (*subtask.Subtask, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &subtask.Subtask{TaskID: in.TaskID, Title: in.Title}, nil
}

type noTimezone struct{}

func (noTimezone) Timezone(ctx context.Context, userID string) (*string, error) { return nil, nil }

func TestRun(t *testing.T) {
	teams, tasks, subs := &fakeTeams{}, &fakeTasks{}, &fakeSubtasks{}
	// Thursday 2024-01-18, 10:00 in São Paulo
	thursday := time.Date(2024, 1, 18, 13, 0, 0, 0, time.UTC)
	s := &Seeder{
		Teams:     teams,
		Tasks:     tasks,
		Subtasks:  subs,
		Timezones: noTimezone{},
		Now:       func() time.Time { return thursday },
	}

	created, err := s.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, TeamName, created.Name)

	require.Len(t, tasks.created, 2)
	for _, in := range tasks.created {
		assert.Equal(t, "team-1", in.TeamID)
	}

	require.Len(t, subs.created, 4)
	due := map[string]string{}
	for _, in := range subs.created {
		require.NotNil(t, in.DueDate)
		require.NotNil(t, in.AssigneeID)
		assert.Equal(t, "user-1", *in.AssigneeID)
		due[in.Title] = *in.DueDate
	}
	assert.Equal(t, "2024-01-15", due["Revisar contratos"])
	assert.Equal(t, "2024-01-17", due["Rodar conciliações"])
	assert.Equal(t, "2024-01-18", due["Aprovar criativos"])
	assert.Equal(t, "2024-01-16", due["Post do blog"])

	assert.Equal(t, "task-Marketing", subs.created[3].TaskID)
	assert.Equal(t, subtask.StatusDone, subs.created[3].Status)
}

func TestRun_StopsOnError(t *testing.T) {
	boom := errors.New("insert failed")
	s := &Seeder{
		Teams:     &fakeTeams{},
		Tasks:     &fakeTasks{},
		Subtasks:  &fakeSubtasks{err: boom},
		Timezones: noTimezone{},
	}

	_, err := s.Run(context.Background(), "user-1")
	assert.ErrorIs(t, err, boom)
}
