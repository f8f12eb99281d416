package task

type CreateTaskInput struct {
	TeamID      string  `json:"team_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTaskInput leaves nil fields unchanged; an empty description clears it.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
