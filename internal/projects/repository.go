package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospeto-crm/prospeto-crm/internal/platform/db"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrTaskNotFound = errors.New("task not found")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context, ownerID int64) ([]Project, error)
	CreateProject(ctx context.Context, p Project) (int64, error)
	UpdateProject(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteProject(ctx context.Context, id int64) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, projectID int64) ([]Task, error)
	CreateTask(ctx context.Context, t Task) (int64, error)
	UpdateTask(ctx context.Context, id int64, updates map[string]interface{}) error
	SetTaskPosition(ctx context.Context, id int64, position int) error
	DeleteTask(ctx context.Context, id int64) error
	NextPosition(ctx context.Context, projectID int64, parentTaskID *int64) (int, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, client_id, owner_id, created_at, updated_at
		FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) ListProjects(ctx context.Context, ownerID int64) ([]Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, client_id, owner_id, created_at, updated_at
		FROM projects WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) CreateProject(ctx context.Context, p Project) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO projects (name, description, client_id, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id`,
		p.Name, p.Description, p.ClientID, p.OwnerID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateProject(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE projects SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "description", "client_id"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteProject(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const taskColumns = `
	id, project_id, parent_task_id, title, description, status, priority,
	position, due_date, completed_at, created_at, updated_at`

func (r *repository) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns), id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) ListTasks(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE project_id = $1
		ORDER BY parent_task_id NULLS FIRST, position, id`, taskColumns), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *repository) CreateTask(ctx context.Context, t Task) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO tasks (
			project_id, parent_task_id, title, description, status, priority,
			position, due_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`,
		t.ProjectID, t.ParentTaskID, t.Title, t.Description,
		string(t.Status), string(t.Priority), t.Position, t.DueDate,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateTask(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE tasks SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"title", "description", "status", "priority", "due_date", "completed_at"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *repository) SetTaskPosition(ctx context.Context, id int64, position int) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET position = $1, updated_at = NOW() WHERE id = $2`, position, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *repository) DeleteTask(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE parent_task_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// NextPosition returns the next free position at the end of a sibling
// scope. New tasks always append; reordering moves them afterwards.
func (r *repository) NextPosition(ctx context.Context, projectID int64, parentTaskID *int64) (int, error) {
	var max pgtype.Int4
	err := r.db.QueryRow(ctx, `
		SELECT MAX(position) FROM tasks
		WHERE project_id = $1 AND parent_task_id IS NOT DISTINCT FROM $2`,
		projectID, parentTaskID,
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int32) + 1, nil
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	var clientID pgtype.Int8
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&p.ID, &p.Name, &p.Description, &clientID, &p.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		v := clientID.Int64
		p.ClientID = &v
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var parentID pgtype.Int8
	var status, priority string
	var dueDate, completedAt, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&t.ID, &t.ProjectID, &parentID, &t.Title, &t.Description, &status, &priority,
		&t.Position, &dueDate, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = TaskStatus(status)
	t.Priority = TaskPriority(priority)
	if parentID.Valid {
		v := parentID.Int64
		t.ParentTaskID = &v
	}
	if dueDate.Valid {
		v := dueDate.Time
		t.DueDate = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return &t, nil
}
