package domain

import (
	"context"
	"time"
)

// ProductKind tags the concrete product type behind a ProductRef.
// The store sells albums today; new kinds (record players, accessories)
// get their own constant and Sellable implementation.
type ProductKind string

const ProductKindAlbum ProductKind = "album"

// ProductRef identifies a sellable product as a (kind, id) pair.
// This replaces open-ended dynamic dispatch with a closed union.
type ProductRef struct {
	Kind ProductKind `json:"kind"`
	ID   string      `json:"id"`
}

func (r ProductRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// Sellable is the capability surface the cart and order machinery need
// from any product kind. Pricing is intentionally NOT part of it: prices
// live in the price catalog, not on the product.
type Sellable interface {
	Ref() ProductRef
	DisplayName() string
	AvailableStock() int
	// TracksSales reports whether fulfillment should bump the product's
	// sold counter (true for catalog goods, false for e.g. services).
	TracksSales() bool
}

type Album struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Artist    string    `json:"artist"`
	Article   string    `json:"article"` // SKU
	Format    string    `json:"format"`  // vinyl, CD, cassette
	Stock     int       `json:"stock"`
	TotalSold int       `json:"totalSold"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Album) Ref() ProductRef {
	return ProductRef{Kind: ProductKindAlbum, ID: a.ID}
}

func (a *Album) DisplayName() string {
	return a.Artist + " – " + a.Name
}

func (a *Album) AvailableStock() int { return a.Stock }

func (a *Album) TracksSales() bool { return true }

type AlbumFilter struct {
	Page    int
	Limit   int
	Search  string
	InStock bool
}

type ProductRepository interface {
	GetAlbumByID(ctx context.Context, id string) (*Album, error)

	// Resolve dispatches on ProductRef.Kind and returns the concrete product.
	Resolve(ctx context.Context, ref ProductRef) (Sellable, error)
	ResolveMany(ctx context.Context, refs []ProductRef) (map[ProductRef]Sellable, error)

	ListAlbums(ctx context.Context, filter AlbumFilter) ([]Album, int64, error)

	// DecrementStock subtracts qty from the product's stock. Stock is
	// allowed to go negative; overselling is warned about at order
	// creation, not hard-blocked here.
	DecrementStock(ctx context.Context, ref ProductRef, qty int) error
	IncrementTotalSold(ctx context.Context, ref ProductRef, qty int) error

	// AdjustStock applies an admin stock correction and returns the
	// stock level before the adjustment.
	AdjustStock(ctx context.Context, ref ProductRef, delta int) (previous int, err error)
}
