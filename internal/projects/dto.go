package projects

import "time"

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ClientID    *int64 `json:"client_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ClientID    *int64  `json:"client_id,omitempty"`
}

type CreateTaskRequest struct {
	Title        string       `json:"title" validate:"required"`
	Description  string       `json:"description"`
	Priority     TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	ParentTaskID *int64       `json:"parent_task_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	Priority    *TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// ReorderTasksRequest persists a drag-and-drop ordering: the full list
// of sibling task ids in their new display order.
type ReorderTasksRequest struct {
	ParentTaskID *int64  `json:"parent_task_id,omitempty"`
	TaskIDs      []int64 `json:"task_ids" validate:"required,min=1"`
}
