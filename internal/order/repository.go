package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"moduscap-be/internal/logger"
	"moduscap-be/internal/money"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	FindPendingPayment(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, o *Order, previous Status) error
	UpdatePaymentProof(ctx context.Context, o *Order) error
	Statistics(ctx context.Context) (*Statistics, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, order_number, status, subtotal, total, rejection_reason, payment_proof, approved_by,
	client_name, client_email, client_phone, client_address, client_notes,
	created_at, updated_at, approved_at, paid_at`

const itemColumns = `
	id, order_id, product_id, product_code, product_name, quantity, unit_price, options_price,
	total_price, customization_notes, selected_options, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o                               Order
		status                          string
		reason, proof                   sql.NullString
		approvedBy                      sql.NullInt64
		name, email, phone, addr, notes sql.NullString
		approvedAt, paidAt              sql.NullTime
	)
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &status, &o.Subtotal, &o.Total, &reason, &proof, &approvedBy,
		&name, &email, &phone, &addr, &notes,
		&o.CreatedAt, &o.UpdatedAt, &approvedAt, &paidAt,
	); err != nil {
		return nil, err
	}

	o.status = Status(status)
	if reason.Valid {
		o.RejectionReason = &reason.String
	}
	if proof.Valid {
		o.PaymentProof = &proof.String
	}
	if approvedBy.Valid {
		o.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		o.ApprovedAt = &approvedAt.Time
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	o.ClientName = name.String
	o.ClientEmail = email.String
	o.ClientPhone = phone.String
	o.ClientAddress = addr.String
	o.ClientNotes = notes.String
	return &o, nil
}

func scanItem(row rowScanner) (*OrderItem, error) {
	var (
		it       OrderItem
		notes    sql.NullString
		selected []byte
	)
	if err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductCode, &it.ProductName, &it.quantity,
		&it.unitPrice, &it.optionsPrice, &it.totalPrice, &notes, &selected, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.CustomizationNotes = notes.String
	if len(selected) > 0 {
		if err := json.Unmarshal(selected, &it.selectedOptions); err != nil {
			return nil, fmt.Errorf("decode selected options of item %d: %w", it.ID, err)
		}
	}
	return &it, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts the order and its items in one transaction and fills in the generated ids.
func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_number", o.OrderNumber),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, status, subtotal, total,
			client_name, client_email, client_phone, client_address, client_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		o.OrderNumber, string(o.status), o.Subtotal, o.Total,
		nullIfEmpty(o.ClientName), nullIfEmpty(o.ClientEmail), nullIfEmpty(o.ClientPhone),
		nullIfEmpty(o.ClientAddress), nullIfEmpty(o.ClientNotes),
		o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		selected, err := json.Marshal(it.selectedOptions)
		if err != nil {
			return fmt.Errorf("encode selected options: %w", err)
		}

		it.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_code, product_name, quantity,
				unit_price, options_price, total_price, customization_notes, selected_options,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`,
			it.OrderID, it.ProductID, it.ProductCode, it.ProductName, it.quantity,
			it.unitPrice, it.optionsPrice, it.totalPrice, nullIfEmpty(it.CustomizationNotes), string(selected),
			it.CreatedAt, it.UpdatedAt,
		).Scan(&it.ID)
		if err != nil {
			log.Error("failed to insert order item", zap.Error(err))
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID returns nil, nil when the order does not exist.
func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByNumber returns nil, nil when the order does not exist.
func (r *repository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.fetchItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *repository) fetchItems(ctx context.Context, orderIDs []int64) (map[int64][]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(orderIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]*OrderItem, len(orderIDs))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func buildWhere(filter ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ClientEmail != "" {
		args = append(args, filter.ClientEmail)
		clauses = append(clauses, fmt.Sprintf("LOWER(client_email) = LOWER($%d)", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns orders newest first, without their items. A zero Limit means no limit.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return r.query(ctx, query, args...)
}

func (r *repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	where, args := buildWhere(filter)

	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&n)
	return n, err
}

// FindPendingPayment lists approved orders still waiting for payment, oldest approval first.
func (r *repository) FindPendingPayment(ctx context.Context) ([]*Order, error) {
	return r.query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 AND paid_at IS NULL ORDER BY approved_at ASC`,
		string(StatusApproved),
	)
}

func (r *repository) query(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query orders", zap.String("layer", "repository"), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus persists the workflow fields of o, provided the stored status
// is still previous. Otherwise it returns ErrConcurrentUpdate.
func (r *repository) UpdateStatus(ctx context.Context, o *Order, previous Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, rejection_reason = $2, approved_by = $3, approved_at = $4, paid_at = $5, updated_at = $6
		WHERE id = $7 AND status = $8`,
		string(o.status), o.RejectionReason, o.ApprovedBy, o.ApprovedAt, o.PaidAt, o.UpdatedAt,
		o.ID, string(previous),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *repository) UpdatePaymentProof(ctx context.Context, o *Order) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_proof = $1, updated_at = $2 WHERE id = $3`,
		o.PaymentProof, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment proof: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) Statistics(ctx context.Context) (*Statistics, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Statistics{ByStatus: make(map[Status]int64, len(AllStatuses))}
	for _, s := range AllStatuses {
		stats.ByStatus[s] = 0
	}

	var revenue float64
	for rows.Next() {
		var (
			status string
			count  int64
			sum    string
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, err
		}
		s := Status(status)
		stats.ByStatus[s] = count
		stats.TotalOrders += count
		if revenueStatuses[s] {
			revenue += money.Parse(sum)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.PendingPayment = stats.ByStatus[StatusApproved]
	stats.Revenue = money.Format(revenue)
	return stats, nil
}
