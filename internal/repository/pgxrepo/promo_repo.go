package pgxrepo

import (
	"context"
	"errors"

	"waxcrate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type promoCodeRepository struct {
	db *pgxpool.Pool
}

func NewPromoCodeRepository(db *pgxpool.Pool) domain.PromoCodeRepository {
	return &promoCodeRepository{db: db}
}

const promoColumns = `id, code, discount_amount, valid_from, valid_until, max_uses, times_used, is_active, min_purchase_amount, created_at`

func scanPromo(row pgx.Row) (*domain.PromoCode, error) {
	var p domain.PromoCode
	var discount, minPurchase pgtype.Numeric
	err := row.Scan(&p.ID, &p.Code, &discount, &p.ValidFrom, &p.ValidUntil, &p.MaxUses, &p.TimesUsed, &p.IsActive, &minPurchase, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromoNotFound
		}
		return nil, err
	}
	p.DiscountAmount = numericToDecimal(discount)
	p.MinPurchaseAmount = numericToDecimal(minPurchase)
	return &p, nil
}

func (r *promoCodeRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	q := queryer(ctx, r.db)
	return scanPromo(q.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code))
}

func (r *promoCodeRepository) GetByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	q := queryer(ctx, r.db)
	return scanPromo(q.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE id = $1`, id))
}

func (r *promoCodeRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	q := queryer(ctx, r.db)
	return q.QueryRow(ctx,
		`INSERT INTO promo_codes (id, code, discount_amount, valid_from, valid_until, max_uses, is_active, min_purchase_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		promo.ID, promo.Code, decimalToNumeric(promo.DiscountAmount),
		promo.ValidFrom, promo.ValidUntil, promo.MaxUses, promo.IsActive,
		decimalToNumeric(promo.MinPurchaseAmount)).Scan(&promo.CreatedAt)
}

func (r *promoCodeRepository) Update(ctx context.Context, promo *domain.PromoCode) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE promo_codes SET code = $2, discount_amount = $3, valid_from = $4, valid_until = $5,
		        max_uses = $6, is_active = $7, min_purchase_amount = $8
		 WHERE id = $1`,
		promo.ID, promo.Code, decimalToNumeric(promo.DiscountAmount),
		promo.ValidFrom, promo.ValidUntil, promo.MaxUses, promo.IsActive,
		decimalToNumeric(promo.MinPurchaseAmount))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromoNotFound
	}
	return nil
}

func (r *promoCodeRepository) Delete(ctx context.Context, id string) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
	return err
}

func (r *promoCodeRepository) List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []domain.PromoCode
	for rows.Next() {
		var p domain.PromoCode
		var discount, minPurchase pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.Code, &discount, &p.ValidFrom, &p.ValidUntil, &p.MaxUses, &p.TimesUsed, &p.IsActive, &minPurchase, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.DiscountAmount = numericToDecimal(discount)
		p.MinPurchaseAmount = numericToDecimal(minPurchase)
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *promoCodeRepository) Count(ctx context.Context) (int64, error) {
	q := queryer(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT count(*) FROM promo_codes`).Scan(&n)
	return n, err
}

func (r *promoCodeRepository) IncrementUsage(ctx context.Context, id string) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE promo_codes SET times_used = times_used + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromoNotFound
	}
	return nil
}
