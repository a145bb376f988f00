package pgxrepo

import (
	"context"
	"errors"
	"time"

	"waxcrate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_id, cart_id, first_name, last_name, phone, address, buying_type, comment, status, paid, order_date, created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CartID, &o.FirstName, &o.LastName,
		&o.Phone, &o.Address, &o.BuyingType, &o.Comment, &o.Status, &o.Paid,
		&o.OrderDate, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	q := queryer(ctx, r.db)
	err := q.QueryRow(ctx,
		`INSERT INTO orders (id, customer_id, cart_id, first_name, last_name, phone, address, buying_type, comment, status, order_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		order.ID, order.CustomerID, order.CartID, order.FirstName, order.LastName,
		order.Phone, order.Address, order.BuyingType, order.Comment, order.Status,
		order.OrderDate).Scan(&order.CreatedAt)
	if err != nil {
		// cart_id is unique: a concurrent checkout for the same cart loses
		// here instead of producing two orders.
		if isUniqueViolation(err, "orders_cart_id_key") {
			return domain.ErrCartClosed
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	q := queryer(ctx, r.db)
	return scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *orderRepository) GetOrderByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	q := queryer(ctx, r.db)
	return scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

func (r *orderRepository) GetOrdersByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CartID, &o.FirstName, &o.LastName,
			&o.Phone, &o.Address, &o.BuyingType, &o.Comment, &o.Status, &o.Paid,
			&o.OrderDate, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) SetPaid(ctx context.Context, orderID string, status string) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE orders SET paid = TRUE, status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	// Payments cascade via FK.
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	q := queryer(ctx, r.db)
	return q.QueryRow(ctx,
		`INSERT INTO payments (id, order_id, session_id, amount, status, method)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		payment.ID, payment.OrderID, payment.SessionID,
		decimalToNumeric(payment.Amount), payment.Status, payment.Method).Scan(&payment.CreatedAt)
}

func (r *orderRepository) GetPaymentBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	q := queryer(ctx, r.db)
	var p domain.Payment
	var amount pgtype.Numeric
	err := q.QueryRow(ctx,
		`SELECT id, order_id, session_id, amount, status, method, paid_at, created_at
		 FROM payments WHERE session_id = $1`,
		sessionID).Scan(&p.ID, &p.OrderID, &p.SessionID, &amount, &p.Status, &p.Method, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentSessionUnknown
		}
		return nil, err
	}
	p.Amount = numericToDecimal(amount)
	return &p, nil
}

func (r *orderRepository) MarkPaymentSucceeded(ctx context.Context, orderID string, paidAt time.Time) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`UPDATE payments SET status = $2, paid_at = $3 WHERE order_id = $1 AND status = $4`,
		orderID, domain.PaymentStatusSuccess, paidAt, domain.PaymentStatusPending)
	return err
}

func (r *orderRepository) SumPaidByCustomer(ctx context.Context, customerID string) (decimal.Decimal, error) {
	q := queryer(ctx, r.db)
	var total pgtype.Numeric
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(p.amount), 0)
		 FROM payments p
		 JOIN orders o ON o.id = p.order_id
		 WHERE o.customer_id = $1 AND p.status = $2`,
		customerID, domain.PaymentStatusSuccess).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}
