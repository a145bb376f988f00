package pgxrepo

import (
	"context"
	"errors"
	"fmt"

	"waxcrate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

const albumColumns = `id, name, artist, article, format, stock, total_sold, created_at, updated_at`

func scanAlbum(row pgx.Row) (*domain.Album, error) {
	var a domain.Album
	err := row.Scan(&a.ID, &a.Name, &a.Artist, &a.Article, &a.Format, &a.Stock, &a.TotalSold, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *productRepository) GetAlbumByID(ctx context.Context, id string) (*domain.Album, error) {
	q := queryer(ctx, r.db)
	return scanAlbum(q.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, id))
}

func (r *productRepository) Resolve(ctx context.Context, ref domain.ProductRef) (domain.Sellable, error) {
	switch ref.Kind {
	case domain.ProductKindAlbum:
		return r.GetAlbumByID(ctx, ref.ID)
	default:
		return nil, fmt.Errorf("unknown product kind %q: %w", ref.Kind, domain.ErrNotFound)
	}
}

func (r *productRepository) ResolveMany(ctx context.Context, refs []domain.ProductRef) (map[domain.ProductRef]domain.Sellable, error) {
	out := make(map[domain.ProductRef]domain.Sellable, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	albumIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Kind == domain.ProductKindAlbum {
			albumIDs = append(albumIDs, ref.ID)
		}
	}

	q := queryer(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ANY($1)`, albumIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Album
		if err := rows.Scan(&a.ID, &a.Name, &a.Artist, &a.Article, &a.Format, &a.Stock, &a.TotalSold, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.Ref()] = &a
	}
	return out, rows.Err()
}

func (r *productRepository) ListAlbums(ctx context.Context, filter domain.AlbumFilter) ([]domain.Album, int64, error) {
	q := queryer(ctx, r.db)

	where := ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR artist ILIKE '%' || $1 || '%')`
	if filter.InStock {
		where += ` AND stock > 0`
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM albums`+where, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	rows, err := q.Query(ctx,
		`SELECT `+albumColumns+` FROM albums`+where+` ORDER BY artist, name LIMIT $2 OFFSET $3`,
		filter.Search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var albums []domain.Album
	for rows.Next() {
		var a domain.Album
		if err := rows.Scan(&a.ID, &a.Name, &a.Artist, &a.Article, &a.Format, &a.Stock, &a.TotalSold, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		albums = append(albums, a)
	}
	return albums, total, rows.Err()
}

func (r *productRepository) DecrementStock(ctx context.Context, ref domain.ProductRef, qty int) error {
	if ref.Kind != domain.ProductKindAlbum {
		return fmt.Errorf("unknown product kind %q: %w", ref.Kind, domain.ErrNotFound)
	}
	q := queryer(ctx, r.db)
	// Stock may go negative here; order creation is the place that warns
	// about shortfalls.
	tag, err := q.Exec(ctx, `UPDATE albums SET stock = stock - $2, updated_at = now() WHERE id = $1`, ref.ID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) IncrementTotalSold(ctx context.Context, ref domain.ProductRef, qty int) error {
	if ref.Kind != domain.ProductKindAlbum {
		return fmt.Errorf("unknown product kind %q: %w", ref.Kind, domain.ErrNotFound)
	}
	q := queryer(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE albums SET total_sold = total_sold + $2, updated_at = now() WHERE id = $1`, ref.ID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, ref domain.ProductRef, delta int) (int, error) {
	if ref.Kind != domain.ProductKindAlbum {
		return 0, fmt.Errorf("unknown product kind %q: %w", ref.Kind, domain.ErrNotFound)
	}
	q := queryer(ctx, r.db)
	var previous int
	err := q.QueryRow(ctx,
		`UPDATE albums SET stock = stock + $2, updated_at = now() WHERE id = $1 RETURNING stock - $2`,
		ref.ID, delta).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return previous, nil
}
