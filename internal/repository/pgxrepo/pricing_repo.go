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

type pricingRepository struct {
	db *pgxpool.Pool
}

func NewPricingRepository(db *pgxpool.Pool) domain.PricingRepository {
	return &pricingRepository{db: db}
}

func (r *pricingRepository) GetActivePriceList(ctx context.Context) (*domain.PriceList, error) {
	q := queryer(ctx, r.db)
	var pl domain.PriceList
	err := q.QueryRow(ctx,
		`SELECT id, name, is_active, created_at FROM price_lists WHERE is_active LIMIT 1`).
		Scan(&pl.ID, &pl.Name, &pl.IsActive, &pl.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // degraded mode, not an error
		}
		return nil, err
	}
	return &pl, nil
}

func (r *pricingRepository) GetEntryPrice(ctx context.Context, priceListID string, ref domain.ProductRef) (decimal.Decimal, bool, error) {
	q := queryer(ctx, r.db)
	var price pgtype.Numeric
	err := q.QueryRow(ctx,
		`SELECT price FROM price_list_entries
		 WHERE price_list_id = $1 AND product_kind = $2 AND product_id = $3`,
		priceListID, ref.Kind, ref.ID).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return numericToDecimal(price), true, nil
}

func (r *pricingRepository) GetEntryPrices(ctx context.Context, priceListID string, refs []domain.ProductRef) (map[domain.ProductRef]decimal.Decimal, error) {
	out := make(map[domain.ProductRef]decimal.Decimal, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	kinds := make([]string, len(refs))
	ids := make([]string, len(refs))
	for i, ref := range refs {
		kinds[i] = string(ref.Kind)
		ids[i] = ref.ID
	}

	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT product_kind, product_id, price FROM price_list_entries
		 WHERE price_list_id = $1
		   AND (product_kind, product_id) IN (SELECT unnest($2::text[]), unnest($3::text[]))`,
		priceListID, kinds, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, id string
		var price pgtype.Numeric
		if err := rows.Scan(&kind, &id, &price); err != nil {
			return nil, err
		}
		out[domain.ProductRef{Kind: domain.ProductKind(kind), ID: id}] = numericToDecimal(price)
	}
	return out, rows.Err()
}

// Highest percentage wins among overlapping promotions; id breaks ties so
// the choice is stable (insertion order).
const bestPromotionQuery = `
	SELECT p.id, p.name, p.description, p.start_date, p.end_date, p.discount_percentage, p.is_active
	FROM promotions p
	JOIN promotion_products pp ON pp.promotion_id = p.id
	WHERE pp.product_kind = $1 AND pp.product_id = $2
	  AND p.is_active AND p.start_date <= $3 AND p.end_date >= $3
	ORDER BY p.discount_percentage DESC, p.id ASC
	LIMIT 1`

func (r *pricingRepository) BestPromotionFor(ctx context.Context, ref domain.ProductRef, now time.Time) (*domain.Promotion, error) {
	q := queryer(ctx, r.db)
	var p domain.Promotion
	var pct pgtype.Numeric
	err := q.QueryRow(ctx, bestPromotionQuery, ref.Kind, ref.ID, now).
		Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate, &pct, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.DiscountPercentage = numericToDecimal(pct)
	return &p, nil
}

func (r *pricingRepository) BestPromotionsFor(ctx context.Context, refs []domain.ProductRef, now time.Time) (map[domain.ProductRef]domain.Promotion, error) {
	out := make(map[domain.ProductRef]domain.Promotion, len(refs))
	for _, ref := range refs {
		p, err := r.BestPromotionFor(ctx, ref, now)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out[ref] = *p
		}
	}
	return out, nil
}

func (r *pricingRepository) ActivatePriceList(ctx context.Context, id string) error {
	q := queryer(ctx, r.db)
	if _, err := q.Exec(ctx, `UPDATE price_lists SET is_active = false WHERE is_active`); err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `UPDATE price_lists SET is_active = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pricingRepository) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT id, name, description, start_date, end_date, discount_percentage, is_active
		 FROM promotions ORDER BY start_date DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		var pct pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate, &pct, &p.IsActive); err != nil {
			return nil, err
		}
		p.DiscountPercentage = numericToDecimal(pct)
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *pricingRepository) CreatePromotion(ctx context.Context, promo *domain.Promotion, products []domain.ProductRef) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO promotions (id, name, description, start_date, end_date, discount_percentage, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		promo.ID, promo.Name, promo.Description, promo.StartDate, promo.EndDate,
		decimalToNumeric(promo.DiscountPercentage), promo.IsActive)
	if err != nil {
		return err
	}
	for _, ref := range products {
		if _, err := q.Exec(ctx,
			`INSERT INTO promotion_products (promotion_id, product_kind, product_id)
			 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			promo.ID, ref.Kind, ref.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *pricingRepository) DeletePromotion(ctx context.Context, id string) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pricingRepository) ListPriceLists(ctx context.Context) ([]domain.PriceList, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, name, is_active, created_at FROM price_lists ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.PriceList
	for rows.Next() {
		var pl domain.PriceList
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.IsActive, &pl.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, pl)
	}
	return lists, rows.Err()
}
