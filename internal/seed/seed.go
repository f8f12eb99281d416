// Package seed creates the sample team a new user can explore the
// dashboard with.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siza083/produtive/internal/calendar"
	"github.com/siza083/produtive/internal/subtask"
	"github.com/siza083/produtive/internal/task"
	"github.com/siza083/produtive/internal/team"
)

const TeamName = "Equipe Produtive"

type TimezoneLookup interface {
	Timezone(ctx context.Context, userID string) (*string, error)
}

type Seeder struct {
	Teams       team.Service
	Tasks       task.Service
	Subtasks    subtask.Service
	Timezones   TimezoneLookup
	DefaultZone string
	Now         func() time.Time
}

type sampleSubtask struct {
	task        string
	title       string
	description string
	offset      int // days from today, or from Monday when fromMonday is set
	fromMonday  bool
	status      subtask.Status
}

var sampleTasks = []task.CreateTaskInput{
	{Title: "Operação", Description: strPtr("Tarefas operacionais do dia a dia")},
	{Title: "Marketing", Description: strPtr("Atividades de marketing e comunicação")},
}

var sampleSubtasks = []sampleSubtask{
	{task: "Operação", title: "Revisar contratos", description: "Revisar contratos pendentes de aprovação", fromMonday: true, status: subtask.StatusOpen},
	{task: "Operação", title: "Rodar conciliações", description: "Executar processo de conciliação bancária", offset: -1, status: subtask.StatusOpen},
	{task: "Marketing", title: "Aprovar criativos", description: "Revisar e aprovar materiais criativos", status: subtask.StatusOpen},
	{task: "Marketing", title: "Post do blog", description: "Escrever artigo sobre produtividade", offset: -2, status: subtask.StatusDone},
}

// Run creates the sample team owned by userID with two tasks and four
// subtasks assigned to the user, dated around today in the user's zone.
func (s *Seeder) Run(ctx context.Context, userID string) (*team.Team, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	tz, err := s.Timezones.Timezone(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := calendar.ResolveLocation(tz, s.DefaultZone)
	today := calendar.Day(now(), loc)
	monday := calendar.Monday(now(), loc)

	t, err := s.Teams.Create(ctx, userID, team.CreateTeamInput{Name: TeamName})
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	taskIDs := make(map[string]string, len(sampleTasks))
	for _, in := range sampleTasks {
		in.TeamID = t.ID
		created, err := s.Tasks.Create(ctx, userID, in)
		if err != nil {
			return nil, fmt.Errorf("create task %q: %w", in.Title, err)
		}
		taskIDs[in.Title] = created.ID
	}

	for _, sample := range sampleSubtasks {
		base := today
		if sample.fromMonday {
			base = monday
		}
		due := base.AddDate(0, 0, sample.offset).Format(calendar.DateLayout)

		_, err := s.Subtasks.Create(ctx, userID, subtask.CreateSubtaskInput{
			TaskID:      taskIDs[sample.task],
			Title:       sample.title,
			Description: strPtr(sample.description),
			DueDate:     &due,
			AssigneeID:  &userID,
			Status:      sample.status,
		})
		if err != nil {
			return nil, fmt.Errorf("create subtask %q: %w", sample.title, err)
		}
	}

	slog.InfoContext(ctx, "sample data created", "user_id", userID, "team_id", t.ID)
	return t, nil
}

func strPtr(s string) *string { return &s }
