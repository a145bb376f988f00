package pgxrepo

import (
	"context"
	"errors"

	"waxcrate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	q := queryer(ctx, r.db)
	var u domain.User
	err := q.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, phone, address, role FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *accountRepository) UpdateContact(ctx context.Context, user *domain.User) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, phone = $4, address = $5 WHERE id = $1`,
		user.ID, user.FirstName, user.LastName, user.Phone, user.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) AddToWishlist(ctx context.Context, customerID string, ref domain.ProductRef) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO wishlist_items (customer_id, product_kind, product_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		customerID, ref.Kind, ref.ID)
	return err
}

func (r *accountRepository) RemoveFromWishlist(ctx context.Context, customerID string, ref domain.ProductRef) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`DELETE FROM wishlist_items WHERE customer_id = $1 AND product_kind = $2 AND product_id = $3`,
		customerID, ref.Kind, ref.ID)
	return err
}

func (r *accountRepository) GetWishlist(ctx context.Context, customerID string) ([]domain.ProductRef, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT product_kind, product_id FROM wishlist_items WHERE customer_id = $1 ORDER BY created_at`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRefs(rows)
}

func (r *accountRepository) CustomersWishing(ctx context.Context, ref domain.ProductRef) ([]string, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT customer_id FROM wishlist_items WHERE product_kind = $1 AND product_id = $2`,
		ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *accountRepository) AddToFavorites(ctx context.Context, customerID string, ref domain.ProductRef) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO favorite_items (customer_id, product_kind, product_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		customerID, ref.Kind, ref.ID)
	return err
}

func (r *accountRepository) RemoveFromFavorites(ctx context.Context, customerID string, ref domain.ProductRef) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`DELETE FROM favorite_items WHERE customer_id = $1 AND product_kind = $2 AND product_id = $3`,
		customerID, ref.Kind, ref.ID)
	return err
}

func (r *accountRepository) GetFavorites(ctx context.Context, customerID string) ([]domain.ProductRef, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT product_kind, product_id FROM favorite_items WHERE customer_id = $1 ORDER BY created_at`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRefs(rows)
}

func scanRefs(rows pgx.Rows) ([]domain.ProductRef, error) {
	var refs []domain.ProductRef
	for rows.Next() {
		var ref domain.ProductRef
		if err := rows.Scan(&ref.Kind, &ref.ID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *accountRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	q := queryer(ctx, r.db)
	return q.QueryRow(ctx,
		`INSERT INTO notifications (id, customer_id, text) VALUES ($1, $2, $3) RETURNING created_at`,
		n.ID, n.CustomerID, n.Text).Scan(&n.CreatedAt)
}

func (r *accountRepository) UnreadNotifications(ctx context.Context, customerID string) ([]domain.Notification, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT id, customer_id, text, is_read, created_at
		 FROM notifications
		 WHERE customer_id = $1 AND NOT is_read
		 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.CustomerID, &n.Text, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *accountRepository) MarkNotificationsRead(ctx context.Context, customerID string) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE customer_id = $1 AND NOT is_read`,
		customerID)
	return err
}
