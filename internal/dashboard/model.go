package dashboard

import (
	"github.com/siza083/produtive/internal/subtask"
	"github.com/siza083/produtive/internal/team"
)

// MemberRecord is one row of a team's roster as seen by the aggregator.
type MemberRecord struct {
	UserID string            `json:"user_id"`
	Status team.MemberStatus `json:"status"`
}

type TeamRecord struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Members []MemberRecord `json:"team_members"`
}

// TaskRecord is a parent task with its team and roster embedded.
type TaskRecord struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	TeamID string      `json:"team_id"`
	Team   *TeamRecord `json:"team"`
}

// visibleTo reports whether userID holds an accepted membership on the
// task's team.
func (t *TaskRecord) visibleTo(userID string) bool {
	if t == nil || t.Team == nil {
		return false
	}
	for _, m := range t.Team.Members {
		if m.UserID == userID && m.Status == team.StatusAccepted {
			return true
		}
	}
	return false
}

type Cards struct {
	Today     int `json:"today"`
	Overdue   int `json:"overdue"`
	Week      int `json:"week"`
	Completed int `json:"completed"`
}

type ChartDay struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Overdue   int    `json:"overdue"`
	IsToday   bool   `json:"is_today"`
	IsPast    bool   `json:"is_past"`
}

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskRef struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	TeamID string   `json:"team_id"`
	Team   *TeamRef `json:"team,omitempty"`
}

// ListItem is an actionable subtask with its parent task and team.
type ListItem struct {
	subtask.Subtask
	Task TaskRef `json:"task"`
}

type Result struct {
	Timezone  string     `json:"timezone"`
	Today     string     `json:"today"`
	WeekStart string     `json:"week_start"`
	WeekEnd   string     `json:"week_end"`
	Cards     Cards      `json:"cards"`
	List      []ListItem `json:"list_tasks"`
	Chart     []ChartDay `json:"chart_data"`
}
