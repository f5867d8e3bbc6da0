package projects

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	mu         sync.Mutex
	projects   map[int64]Project
	tasks      map[int64]Task
	nextProjID int64
	nextTaskID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		projects: make(map[int64]Project),
		tasks:    make(map[int64]Task),
	}
}

func (r *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *stubRepo) GetProject(ctx context.Context, id int64) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *stubRepo) ListProjects(ctx context.Context, ownerID int64) ([]Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Project
	for id := int64(1); id <= r.nextProjID; id++ {
		if p, ok := r.projects[id]; ok && p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubRepo) CreateProject(ctx context.Context, p Project) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextProjID++
	p.ID = r.nextProjID
	r.projects[p.ID] = p
	return p.ID, nil
}

func (r *stubRepo) UpdateProject(ctx context.Context, id int64, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	r.projects[id] = p
	return nil
}

func (r *stubRepo) DeleteProject(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *stubRepo) GetTask(ctx context.Context, id int64) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

func (r *stubRepo) ListTasks(ctx context.Context, projectID int64) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Task
	for id := int64(1); id <= r.nextTaskID; id++ {
		if t, ok := r.tasks[id]; ok && t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubRepo) CreateTask(ctx context.Context, t Task) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTaskID++
	t.ID = r.nextTaskID
	r.tasks[t.ID] = t
	return t.ID, nil
}

func (r *stubRepo) UpdateTask(ctx context.Context, id int64, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if v, ok := updates["status"]; ok {
		t.Status = TaskStatus(v.(string))
	}
	if v, ok := updates["title"]; ok {
		t.Title = v.(string)
	}
	r.tasks[id] = t
	return nil
}

func (r *stubRepo) SetTaskPosition(ctx context.Context, id int64, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.Position = position
	r.tasks[id] = t
	return nil
}

func (r *stubRepo) DeleteTask(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubRepo) NextPosition(ctx context.Context, projectID int64, parentTaskID *int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, t := range r.tasks {
		if t.ProjectID == projectID && sameParent(t.ParentTaskID, parentTaskID) && t.Position > max {
			max = t.Position
		}
	}
	return max + 1, nil
}

func seedProject(t *testing.T, svc *Service) *Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), CreateProjectRequest{Name: "Lançamento site"}, 1)
	require.NoError(t, err)
	return p
}

func TestCreateTaskAppendsAtEnd(t *testing.T) {
	svc := NewService(newStubRepo())
	p := seedProject(t, svc)

	first, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "Briefing"})
	require.NoError(t, err)
	second, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "Wireframe"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, TaskPending, first.Status)
	assert.Equal(t, PriorityMedium, first.Priority)
}

func TestSubtaskPositionsAreScopedToParent(t *testing.T) {
	svc := NewService(newStubRepo())
	p := seedProject(t, svc)

	parent, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "Design"})
	require.NoError(t, err)
	sub, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "Paleta", ParentTaskID: &parent.ID})
	require.NoError(t, err)

	// sibling scopes number independently
	assert.Equal(t, 1, sub.Position)

	// one level of nesting only
	_, err = svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "Tons", ParentTaskID: &sub.ID})
	assert.Error(t, err)
}

func TestCreateTaskRejectsForeignParent(t *testing.T) {
	svc := NewService(newStubRepo())
	p1 := seedProject(t, svc)
	p2, err := svc.CreateProject(context.Background(), CreateProjectRequest{Name: "Outro"}, 1)
	require.NoError(t, err)

	parent, err := svc.CreateTask(context.Background(), p1.ID, CreateTaskRequest{Title: "a"})
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), p2.ID, CreateTaskRequest{Title: "b", ParentTaskID: &parent.ID})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTaskCompletionTimestamps(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	p := seedProject(t, svc)
	task, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "Entrega"})
	require.NoError(t, err)

	done := TaskCompleted
	updated, err := svc.UpdateTask(context.Background(), task.ID, UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, updated.Status)
}

func TestReorderRewritesPositions(t *testing.T) {
	svc := NewService(newStubRepo())
	p := seedProject(t, svc)

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		task, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	tasks, err := svc.Reorder(context.Background(), p.ID, ReorderTasksRequest{
		TaskIDs: []int64{ids[2], ids[0], ids[1]},
	})
	require.NoError(t, err)

	positions := make(map[int64]int)
	for _, task := range tasks {
		positions[task.ID] = task.Position
	}
	assert.Equal(t, 1, positions[ids[2]])
	assert.Equal(t, 2, positions[ids[0]])
	assert.Equal(t, 3, positions[ids[1]])
}

func TestReorderValidation(t *testing.T) {
	svc := NewService(newStubRepo())
	p := seedProject(t, svc)

	a, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "a"})
	require.NoError(t, err)
	b, err := svc.CreateTask(context.Background(), p.ID, CreateTaskRequest{Title: "b"})
	require.NoError(t, err)

	tests := []struct {
		name string
		ids  []int64
	}{
		{"missing task", []int64{a.ID}},
		{"duplicate task", []int64{a.ID, a.ID}},
		{"foreign task", []int64{a.ID, 999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reorder(context.Background(), p.ID, ReorderTasksRequest{TaskIDs: tt.ids})
			assert.ErrorIs(t, err, ErrInvalidReorder)
		})
	}

	_, err = svc.Reorder(context.Background(), p.ID, ReorderTasksRequest{TaskIDs: []int64{b.ID, a.ID}})
	assert.NoError(t, err)
}
