package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/starfeed/starfeed/domain/order"
	"github.com/starfeed/starfeed/domain/plan"
	"github.com/starfeed/starfeed/ports"
)

// OrderStore implements ports.OrderStore using SQLite.
type OrderStore struct {
	db *DB
}

// NewOrderStore creates a new SQLite order store.
func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, owner_id, plan_id, plan_label, quota_granted, amount_minor, currency,
	gateway_order_id, gateway_payment_id, gateway_signature, status, note, created_at, updated_at`

// Create stores a new order.
func (s *OrderStore) Create(ctx context.Context, o order.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.OwnerID, string(o.PlanID), o.PlanLabel, o.QuotaGranted, o.AmountMinor, o.Currency,
		o.GatewayOrderID, o.GatewayPaymentID, o.GatewaySignature, string(o.Status), o.Note,
		o.CreatedAt, o.UpdatedAt)
	return err
}

// Get retrieves an order by ID.
func (s *OrderStore) Get(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = ?
	`, id)
	return scanOrderRow(row)
}

// GetPending retrieves a created-status order by gateway order id and owner.
func (s *OrderStore) GetPending(ctx context.Context, gatewayOrderID, ownerID string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE gateway_order_id = ? AND owner_id = ? AND status = ?
	`, gatewayOrderID, ownerID, string(order.StatusCreated))
	return scanOrderRow(row)
}

// MarkPaid flips a created order to paid. The status predicate in the
// UPDATE is the optimistic lock: of two concurrent verify attempts,
// exactly one sees a row affected.
func (s *OrderStore) MarkPaid(ctx context.Context, id, paymentID, signature string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, gateway_payment_id = ?, gateway_signature = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(order.StatusPaid), paymentID, signature, at.UTC(), id, string(order.StatusCreated))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus applies a status transition.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, note string, at time.Time) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanTransition(o.Status, status) {
		return ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, note = ?, updated_at = ? WHERE id = ? AND status = ?
	`, string(status), note, at.UTC(), id, string(o.Status))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns orders in a status, newest first.
func (s *OrderStore) ListByStatus(ctx context.Context, status order.Status, limit, offset int) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, string(status), limitOrAll(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListByOwner returns a user's orders, newest first.
func (s *OrderStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, ownerID, limitOrAll(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]order.Order, error) {
	var orders []order.Order
	for rows.Next() {
		var o order.Order
		var planID, status string
		err := rows.Scan(
			&o.ID, &o.OwnerID, &planID, &o.PlanLabel, &o.QuotaGranted, &o.AmountMinor, &o.Currency,
			&o.GatewayOrderID, &o.GatewayPaymentID, &o.GatewaySignature, &status, &o.Note,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		o.PlanID = plan.ID(planID)
		o.Status = order.Status(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrderRow(row *sql.Row) (order.Order, error) {
	var o order.Order
	var planID, status string
	err := row.Scan(
		&o.ID, &o.OwnerID, &planID, &o.PlanLabel, &o.QuotaGranted, &o.AmountMinor, &o.Currency,
		&o.GatewayOrderID, &o.GatewayPaymentID, &o.GatewaySignature, &status, &o.Note,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}
	o.PlanID = plan.ID(planID)
	o.Status = order.Status(status)
	return o, nil
}

// Ensure interface compliance.
var _ ports.OrderStore = (*OrderStore)(nil)
