package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

// ErrNotFound wraps the shared sentinel so callers outside the package
// can match lookup misses without importing clients.
var ErrNotFound = fmt.Errorf("client %w", shared.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, client Client) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, name, email, company, phone, owner_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM clients WHERE id = $1", clientColumns), id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR company ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM clients %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(
		"SELECT %s FROM clients %s ORDER BY name, id LIMIT $%d OFFSET $%d",
		clientColumns, whereClause, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *c)
	}
	return list, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, client Client) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO clients (name, email, company, phone, owner_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING id`,
		client.Name, client.Email, client.Company, client.Phone, client.OwnerID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE clients SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "email", "company", "phone"} {
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

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	var email, company, phone pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	if err := row.Scan(&c.ID, &c.Name, &email, &company, &phone, &c.OwnerID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		c.Email = &v
	}
	if company.Valid {
		v := company.String
		c.Company = &v
	}
	if phone.Valid {
		v := phone.String
		c.Phone = &v
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}
