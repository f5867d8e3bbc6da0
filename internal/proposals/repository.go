package proposals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospeto-crm/prospeto-crm/internal/platform/db"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

var (
	ErrNotFound = errors.New("proposal not found")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Proposal, error)
	GetByShareToken(ctx context.Context, token string) (*ProposalWithDetails, error)
	List(ctx context.Context, req ListProposalsRequest) ([]ProposalWithDetails, int, error)
	Create(ctx context.Context, p Proposal) (int64, error)
	InsertLine(ctx context.Context, line ProposalService) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	DeleteLines(ctx context.Context, proposalID int64) error
	ListExpired(ctx context.Context, now pgtype.Timestamptz) ([]Proposal, error)
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

const proposalColumns = `
	p.id, p.title, p.amount, p.client_id, p.owner_id, p.status, p.notes,
	p.payment_type, p.cash_discount_percentage, p.installment_number,
	p.installment_value, p.manual_installment_total, p.is_validity_enabled,
	p.validity_days, p.proposal_logo_url, p.proposal_gradient_theme,
	p.share_token, p.created_at, p.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Proposal, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM proposals p WHERE p.id = $1", proposalColumns), id)
	p, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Services = lines
	return p, nil
}

func (r *repository) GetByShareToken(ctx context.Context, token string) (*ProposalWithDetails, error) {
	query := fmt.Sprintf(`
		SELECT %s, c.name AS client_name, u.full_name AS owner_name
		FROM proposals p
		LEFT JOIN clients c ON p.client_id = c.id
		JOIN users u ON p.owner_id = u.id
		WHERE p.share_token = $1`, proposalColumns)
	rows, err := r.db.Query(ctx, query, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := scanProposalsWithDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	p := list[0]
	lines, err := r.lines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Services = lines
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListProposalsRequest) ([]ProposalWithDetails, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR c.name ILIKE $%d OR u.full_name ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("p.owner_id = $%d", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}
	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("p.client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.CreatedFrom != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", argPos))
		args = append(args, *req.CreatedFrom)
		argPos++
	}
	if req.CreatedTo != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at <= $%d", argPos))
		args = append(args, *req.CreatedTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM proposals p
		LEFT JOIN clients c ON p.client_id = c.id
		JOIN users u ON p.owner_id = u.id
		%s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "p.created_at"
	switch req.SortBy {
	case SortByAmount:
		orderBy = "p.amount"
	case SortByUpdatedAt:
		orderBy = "p.updated_at"
	}
	direction := "ASC"
	if req.SortDesc {
		direction = "DESC"
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 500
	}

	query := fmt.Sprintf(`
		SELECT %s, c.name AS client_name, u.full_name AS owner_name
		FROM proposals p
		LEFT JOIN clients c ON p.client_id = c.id
		JOIN users u ON p.owner_id = u.id
		%s
		ORDER BY %s %s, p.id %s
		LIMIT $%d OFFSET $%d
	`, proposalColumns, whereClause, orderBy, direction, direction, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanProposalsWithDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, p Proposal) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO proposals (
			title, amount, client_id, owner_id, status, notes,
			payment_type, cash_discount_percentage, installment_number,
			installment_value, manual_installment_total, is_validity_enabled,
			validity_days, proposal_logo_url, proposal_gradient_theme, share_token,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
		RETURNING id`,
		p.Title, p.Amount, p.ClientID, p.OwnerID, string(p.Status), p.Notes,
		string(p.PaymentType), p.CashDiscountPercentage, p.InstallmentNumber,
		p.InstallmentValue, p.ManualInstallmentTotal, p.IsValidityEnabled,
		p.ValidityDays, p.LogoURL, p.GradientTheme, p.ShareToken,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, line ProposalService) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO proposal_services (
			proposal_id, service_id, name, description, base_price, quantity,
			custom_price, discount, discount_percentage, discount_type,
			features, category, icon, is_custom, billing_type, line_order
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id`,
		line.ProposalID, line.ServiceID, line.Name, line.Description, line.BasePrice,
		line.Quantity, line.CustomPrice, line.Discount, line.DiscountPercentage,
		string(line.DiscountType), line.Features, line.Category, line.Icon,
		line.IsCustom, string(line.BillingType), line.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE proposals SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"title", "client_id", "notes", "status", "proposal_logo_url", "proposal_gradient_theme"} {
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

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE proposals SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.DeleteLines(ctx, id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteLines(ctx context.Context, proposalID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM proposal_services WHERE proposal_id = $1`, proposalID)
	return err
}

// ListExpired returns validity-enabled proposals whose window has lapsed
// and that still sit in an active column.
func (r *repository) ListExpired(ctx context.Context, now pgtype.Timestamptz) ([]Proposal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM proposals p
		WHERE p.is_validity_enabled
		  AND p.validity_days > 0
		  AND p.created_at + make_interval(days => p.validity_days) < $1
		  AND p.status NOT IN ($2, $3)`, proposalColumns)
	rows, err := r.db.Query(ctx, query, now, string(StatusApproved), string(StatusRejected))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) lines(ctx context.Context, proposalID int64) ([]ProposalService, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, proposal_id, service_id, name, description, base_price, quantity,
		       custom_price, discount, discount_percentage, discount_type,
		       features, category, icon, is_custom, billing_type, line_order
		FROM proposal_services
		WHERE proposal_id = $1
		ORDER BY line_order, id`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ProposalService
	for rows.Next() {
		var l ProposalService
		var customPrice pgtype.Float8
		var discountType, billingType string
		if err := rows.Scan(
			&l.ID, &l.ProposalID, &l.ServiceID, &l.Name, &l.Description, &l.BasePrice,
			&l.Quantity, &customPrice, &l.Discount, &l.DiscountPercentage, &discountType,
			&l.Features, &l.Category, &l.Icon, &l.IsCustom, &billingType, &l.LineOrder,
		); err != nil {
			return nil, err
		}
		if customPrice.Valid {
			v := customPrice.Float64
			l.CustomPrice = &v
		}
		l.DiscountType = quote.DiscountType(discountType)
		l.BillingType = quote.BillingType(billingType)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanProposal(row pgx.Row) (*Proposal, error) {
	var p Proposal
	var clientID pgtype.Int8
	var installmentNumber pgtype.Int4
	var installmentValue, manualTotal pgtype.Float8
	var status, paymentType string
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&p.ID, &p.Title, &p.Amount, &clientID, &p.OwnerID, &status, &p.Notes,
		&paymentType, &p.CashDiscountPercentage, &installmentNumber,
		&installmentValue, &manualTotal, &p.IsValidityEnabled,
		&p.ValidityDays, &p.LogoURL, &p.GradientTheme,
		&p.ShareToken, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = Status(status)
	p.PaymentType = quote.PaymentType(paymentType)
	if clientID.Valid {
		v := clientID.Int64
		p.ClientID = &v
	}
	if installmentNumber.Valid {
		v := int(installmentNumber.Int32)
		p.InstallmentNumber = &v
	}
	if installmentValue.Valid {
		v := installmentValue.Float64
		p.InstallmentValue = &v
	}
	if manualTotal.Valid {
		v := manualTotal.Float64
		p.ManualInstallmentTotal = &v
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

func scanProposalsWithDetails(rows pgx.Rows) ([]ProposalWithDetails, error) {
	var list []ProposalWithDetails
	for rows.Next() {
		var p ProposalWithDetails
		var clientID pgtype.Int8
		var installmentNumber pgtype.Int4
		var installmentValue, manualTotal pgtype.Float8
		var status, paymentType string
		var clientName pgtype.Text
		var createdAt, updatedAt pgtype.Timestamptz

		err := rows.Scan(
			&p.ID, &p.Title, &p.Amount, &clientID, &p.OwnerID, &status, &p.Notes,
			&paymentType, &p.CashDiscountPercentage, &installmentNumber,
			&installmentValue, &manualTotal, &p.IsValidityEnabled,
			&p.ValidityDays, &p.LogoURL, &p.GradientTheme,
			&p.ShareToken, &createdAt, &updatedAt,
			&clientName, &p.OwnerName,
		)
		if err != nil {
			return nil, err
		}

		p.Status = Status(status)
		p.PaymentType = quote.PaymentType(paymentType)
		if clientID.Valid {
			v := clientID.Int64
			p.ClientID = &v
		}
		if installmentNumber.Valid {
			v := int(installmentNumber.Int32)
			p.InstallmentNumber = &v
		}
		if installmentValue.Valid {
			v := installmentValue.Float64
			p.InstallmentValue = &v
		}
		if manualTotal.Valid {
			v := manualTotal.Float64
			p.ManualInstallmentTotal = &v
		}
		if clientName.Valid {
			v := clientName.String
			p.ClientName = &v
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			p.UpdatedAt = updatedAt.Time
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
