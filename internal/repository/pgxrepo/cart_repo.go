package pgxrepo

import (
	"context"
	"errors"

	"waxcrate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type cartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) domain.CartRepository {
	return &cartRepository{db: db}
}

const cartColumns = `id, customer_id, in_order, total_items, original_price, final_price, applied_promo_id, created_at, updated_at`

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var c domain.Cart
	var original, final pgtype.Numeric
	err := row.Scan(&c.ID, &c.CustomerID, &c.InOrder, &c.TotalItems, &original, &final, &c.AppliedPromo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.OriginalPrice = numericToDecimal(original)
	c.FinalPrice = numericToDecimal(final)
	return &c, nil
}

func (r *cartRepository) GetOpenCartByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	q := queryer(ctx, r.db)
	cart, err := scanCart(q.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE customer_id = $1 AND NOT in_order`, customerID))
	if err != nil || cart == nil {
		return cart, err
	}
	cart.Items, err = r.GetItems(ctx, cart.ID)
	return cart, err
}

func (r *cartRepository) GetCartByID(ctx context.Context, id string) (*domain.Cart, error) {
	q := queryer(ctx, r.db)
	cart, err := scanCart(q.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrNotFound
	}
	cart.Items, err = r.GetItems(ctx, cart.ID)
	return cart, err
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *domain.Cart) error {
	q := queryer(ctx, r.db)
	err := q.QueryRow(ctx,
		`INSERT INTO carts (id, customer_id, in_order, total_items, original_price, final_price)
		 VALUES ($1, $2, false, 0, 0, 0)
		 RETURNING created_at, updated_at`,
		cart.ID, cart.CustomerID).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		// The partial unique index on (customer_id) WHERE NOT in_order
		// closes the double-open-cart race: the loser refetches.
		if isUniqueViolation(err, "carts_one_open_per_customer") {
			return domain.ErrOpenCartExists
		}
		return err
	}
	cart.OriginalPrice = decimal.Zero
	cart.FinalPrice = decimal.Zero
	return nil
}

func (r *cartRepository) GetItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT id, cart_id, product_kind, product_id, quantity, line_total
		 FROM cart_items WHERE cart_id = $1 ORDER BY created_at, id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		var kind, productID string
		var lineTotal pgtype.Numeric
		if err := rows.Scan(&it.ID, &it.CartID, &kind, &productID, &it.Quantity, &lineTotal); err != nil {
			return nil, err
		}
		it.Product = domain.ProductRef{Kind: domain.ProductKind(kind), ID: productID}
		it.LineTotal = numericToDecimal(lineTotal)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *cartRepository) GetItemByRef(ctx context.Context, cartID string, ref domain.ProductRef) (*domain.CartItem, error) {
	q := queryer(ctx, r.db)
	var it domain.CartItem
	var lineTotal pgtype.Numeric
	err := q.QueryRow(ctx,
		`SELECT id, cart_id, quantity, line_total FROM cart_items
		 WHERE cart_id = $1 AND product_kind = $2 AND product_id = $3`,
		cartID, ref.Kind, ref.ID).Scan(&it.ID, &it.CartID, &it.Quantity, &lineTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	it.Product = ref
	it.LineTotal = numericToDecimal(lineTotal)
	return &it, nil
}

func (r *cartRepository) InsertItem(ctx context.Context, item *domain.CartItem) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO cart_items (id, cart_id, product_kind, product_id, quantity, line_total)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.CartID, item.Product.Kind, item.Product.ID, item.Quantity, decimalToNumeric(item.LineTotal))
	return err
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cartRepository) UpdateItemLineTotal(ctx context.Context, itemID string, lineTotal decimal.Decimal) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE cart_items SET line_total = $2 WHERE id = $1`, itemID, decimalToNumeric(lineTotal))
	return err
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID string) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (r *cartRepository) DeleteItems(ctx context.Context, cartID string) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *cartRepository) UpdateAggregates(ctx context.Context, cart *domain.Cart) error {
	q := queryer(ctx, r.db)
	_, err := q.Exec(ctx,
		`UPDATE carts SET total_items = $2, original_price = $3, final_price = $4,
		        applied_promo_id = $5, updated_at = now()
		 WHERE id = $1`,
		cart.ID, cart.TotalItems, decimalToNumeric(cart.OriginalPrice), decimalToNumeric(cart.FinalPrice), cart.AppliedPromo)
	return err
}

func (r *cartRepository) SetInOrder(ctx context.Context, cartID string, inOrder bool) error {
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE carts SET in_order = $2, updated_at = now() WHERE id = $1`, cartID, inOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
