package pgxrepo

import (
	"context"
	"errors"

	"waxcrate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type returnRepository struct {
	db *pgxpool.Pool
}

func NewReturnRepository(db *pgxpool.Pool) domain.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) CreateReturn(ctx context.Context, rr *domain.ReturnRequest) error {
	q := queryer(ctx, r.db)
	return q.QueryRow(ctx,
		`INSERT INTO return_requests (id, customer_id, order_id, item_ids, reason, details, attachment_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		rr.ID, rr.CustomerID, rr.OrderID, rr.ItemIDs, rr.Reason, rr.Details,
		rr.AttachmentURL, rr.Status).Scan(&rr.CreatedAt)
}

func (r *returnRepository) GetReturnByID(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	q := queryer(ctx, r.db)
	var rr domain.ReturnRequest
	err := q.QueryRow(ctx,
		`SELECT id, customer_id, order_id, item_ids, reason, details, attachment_url, status, created_at
		 FROM return_requests WHERE id = $1`,
		id).Scan(&rr.ID, &rr.CustomerID, &rr.OrderID, &rr.ItemIDs, &rr.Reason,
		&rr.Details, &rr.AttachmentURL, &rr.Status, &rr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rr, nil
}

func (r *returnRepository) GetReturnsByCustomer(ctx context.Context, customerID string) ([]domain.ReturnRequest, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT id, customer_id, order_id, item_ids, reason, details, attachment_url, status, created_at
		 FROM return_requests WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReturnRequest
	for rows.Next() {
		var rr domain.ReturnRequest
		if err := rows.Scan(&rr.ID, &rr.CustomerID, &rr.OrderID, &rr.ItemIDs, &rr.Reason,
			&rr.Details, &rr.AttachmentURL, &rr.Status, &rr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *returnRepository) UpdateReturnStatus(ctx context.Context, id, status string) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE return_requests SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *returnRepository) DeleteReturn(ctx context.Context, id string) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM return_requests WHERE id = $1`, id)
	return err
}
