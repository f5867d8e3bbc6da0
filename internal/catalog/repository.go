package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospeto-crm/prospeto-crm/internal/quote"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

// ErrNotFound wraps the shared sentinel so callers outside the package
// can match lookup misses without importing catalog.
var ErrNotFound = fmt.Errorf("service %w", shared.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, id int64) (*CatalogService, error)
	List(ctx context.Context, req ListServicesRequest) ([]CatalogService, error)
	Create(ctx context.Context, svc CatalogService) (int64, error)
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

const serviceColumns = `
	id, name, description, base_price, category, icon, features,
	is_popular, is_custom, billing_type, owner_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*CatalogService, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM services WHERE id = $1", serviceColumns), id)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (r *repository) List(ctx context.Context, req ListServicesRequest) ([]CatalogService, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, req.Category)
		argPos++
	}
	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("(owner_id IS NULL OR owner_id = $%d)", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}
	if req.CustomOnly {
		conditions = append(conditions, "is_custom")
	}

	query := fmt.Sprintf("SELECT %s FROM services", serviceColumns)
	if len(conditions) > 0 {
		query += " WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			query += " AND " + conditions[i]
		}
	}
	query += " ORDER BY is_custom, category, name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []CatalogService
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}
	return services, rows.Err()
}

func (r *repository) Create(ctx context.Context, svc CatalogService) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO services (
			name, description, base_price, category, icon, features,
			is_popular, is_custom, billing_type, owner_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING id`,
		svc.Name, svc.Description, svc.BasePrice, svc.Category, svc.Icon, svc.Features,
		svc.IsPopular, svc.IsCustom, string(svc.BillingType), svc.OwnerID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE services SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "description", "base_price", "category", "icon", "features", "billing_type"} {
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
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND is_custom`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanService(row pgx.Row) (*CatalogService, error) {
	var svc CatalogService
	var ownerID pgtype.Int8
	var billingType string
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&svc.ID, &svc.Name, &svc.Description, &svc.BasePrice, &svc.Category,
		&svc.Icon, &svc.Features, &svc.IsPopular, &svc.IsCustom, &billingType,
		&ownerID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	svc.BillingType = quote.BillingType(billingType)
	if ownerID.Valid {
		v := ownerID.Int64
		svc.OwnerID = &v
	}
	if createdAt.Valid {
		svc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		svc.UpdatedAt = updatedAt.Time
	}
	return &svc, nil
}
