// Package projects is the secondary project and task tracker. It is a
// planning surface beside the proposal pipeline; tasks are ordered by
// an explicit position column so drag-and-drop order survives reloads.
package projects

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Project struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ClientID    *int64    `json:"client_id,omitempty" db:"client_id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Task is one row of a project's task list. ParentTaskID marks a
// subtask; Position orders siblings within the same parent scope.
type Task struct {
	ID           int64        `json:"id" db:"id"`
	ProjectID    int64        `json:"project_id" db:"project_id"`
	ParentTaskID *int64       `json:"parent_task_id,omitempty" db:"parent_task_id"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description" db:"description"`
	Status       TaskStatus   `json:"status" db:"status"`
	Priority     TaskPriority `json:"priority" db:"priority"`
	Position     int          `json:"position" db:"position"`
	DueDate      *time.Time   `json:"due_date,omitempty" db:"due_date"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// ProjectWithTasks is the detail view: tasks in position order,
// subtasks included flat with their parent reference.
type ProjectWithTasks struct {
	Project
	Tasks []Task `json:"tasks"`
}
