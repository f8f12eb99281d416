package subtask

import "time"

type Status string

const (
	StatusOpen          Status = "open"
	StatusTodo          Status = "todo"
	StatusInProgress    Status = "in_progress"
	StatusWaitingClient Status = "waiting_client"
	StatusDone          Status = "done"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusTodo, StatusInProgress, StatusWaitingClient, StatusDone:
		return true
	}
	return false
}

// IsDone is the only terminal state; every other status counts as open.
func (s Status) IsDone() bool {
	return s == StatusDone
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Subtask struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"` // YYYY-MM-DD
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Priority    Priority   `json:"priority"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`
}

// setStatus keeps CompletedAt in step with the status: stamped when the
// subtask becomes done, cleared when it leaves done.
func (s *Subtask) setStatus(status Status, now time.Time) {
	switch {
	case status.IsDone() && !s.Status.IsDone():
		s.CompletedAt = &now
	case !status.IsDone():
		s.CompletedAt = nil
	}
	s.Status = status
}
