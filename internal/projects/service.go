package projects

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidReorder = errors.New("invalid reorder")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProject(ctx context.Context, id int64) (*ProjectWithTasks, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return &ProjectWithTasks{Project: *p, Tasks: tasks}, nil
}

func (s *Service) ListProjects(ctx context.Context, ownerID int64) ([]Project, error) {
	return s.repo.ListProjects(ctx, ownerID)
}

func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest, ownerID int64) (*Project, error) {
	id, err := s.repo.CreateProject(ctx, Project{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return s.repo.GetProject(ctx, id)
}

func (s *Service) UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ClientID != nil {
		if *req.ClientID > 0 {
			updates["client_id"] = *req.ClientID
		} else {
			updates["client_id"] = nil
		}
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateProject(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.GetProject(ctx, id)
}

func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.DeleteProject(ctx, id)
	})
}

// CreateTask appends a task at the end of its sibling scope. A subtask
// inherits nothing from its parent; it only references it.
func (s *Service) CreateTask(ctx context.Context, projectID int64, req CreateTaskRequest) (*Task, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	if req.ParentTaskID != nil {
		parent, err := s.repo.GetTask(ctx, *req.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent.ProjectID != projectID {
			return nil, fmt.Errorf("%w: parent task belongs to another project", ErrTaskNotFound)
		}
		if parent.ParentTaskID != nil {
			return nil, errors.New("subtasks cannot nest further")
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	var taskID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		position, err := repo.NextPosition(ctx, projectID, req.ParentTaskID)
		if err != nil {
			return err
		}
		id, err := repo.CreateTask(ctx, Task{
			ProjectID:    projectID,
			ParentTaskID: req.ParentTaskID,
			Title:        req.Title,
			Description:  req.Description,
			Status:       TaskPending,
			Priority:     priority,
			Position:     position,
			DueDate:      req.DueDate,
		})
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		taskID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetTask(ctx, taskID)
}

func (s *Service) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (*Task, error) {
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = string(*req.Status)
		if *req.Status == TaskCompleted {
			updates["completed_at"] = time.Now()
		} else {
			updates["completed_at"] = nil
		}
	}
	if req.Priority != nil {
		updates["priority"] = string(*req.Priority)
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateTask(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.GetTask(ctx, id)
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.DeleteTask(ctx, id)
	})
}

// Reorder persists a drag-and-drop ordering for one sibling scope. The
// request must list exactly the tasks of that scope; positions are
// rewritten 1..n in the order given, inside a single transaction.
func (s *Service) Reorder(ctx context.Context, projectID int64, req ReorderTasksRequest) ([]Task, error) {
	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	scope := make(map[int64]bool)
	for _, t := range tasks {
		if sameParent(t.ParentTaskID, req.ParentTaskID) {
			scope[t.ID] = true
		}
	}
	if len(req.TaskIDs) != len(scope) {
		return nil, fmt.Errorf("%w: expected %d tasks, got %d", ErrInvalidReorder, len(scope), len(req.TaskIDs))
	}
	seen := make(map[int64]bool, len(req.TaskIDs))
	for _, id := range req.TaskIDs {
		if !scope[id] {
			return nil, fmt.Errorf("%w: task %d is not in this scope", ErrInvalidReorder, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: task %d listed twice", ErrInvalidReorder, id)
		}
		seen[id] = true
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for i, id := range req.TaskIDs {
			if err := repo.SetTaskPosition(ctx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reorder tasks: %w", err)
	}
	return s.repo.ListTasks(ctx, projectID)
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
