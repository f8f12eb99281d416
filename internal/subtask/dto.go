package subtask

type CreateSubtaskInput struct {
	TaskID      string   `json:"task_id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	DueDate     *string  `json:"due_date"`
	AssigneeID  *string  `json:"assignee_id"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
}

// UpdateSubtaskInput leaves nil fields unchanged. An empty string clears
// description, due_date and assignee_id.
type UpdateSubtaskInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"due_date"`
	AssigneeID  *string   `json:"assignee_id"`
	Status      *Status   `json:"status"`
	Priority    *Priority `json:"priority"`
}
