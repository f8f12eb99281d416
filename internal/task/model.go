package task

import "time"

type Task struct {
	ID          string     `json:"id"`
	TeamID      string     `json:"team_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`

	// filled by read queries
	TeamName      string `json:"team_name"`
	OpenSubtasks  int    `json:"open_subtasks"`
	TotalSubtasks int    `json:"total_subtasks"`
}
