package usecase

import (
	"context"
	"fmt"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/utils"
)

// CatalogUsecase is the read side of the store plus admin stock
// corrections.
type CatalogUsecase struct {
	productRepo domain.ProductRepository
	accountRepo domain.AccountRepository
	pricing     *PricingUsecase
	txManager   domain.TransactionManager
}

func NewCatalogUsecase(productRepo domain.ProductRepository, accountRepo domain.AccountRepository, pricing *PricingUsecase, txManager domain.TransactionManager) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo: productRepo,
		accountRepo: accountRepo,
		pricing:     pricing,
		txManager:   txManager,
	}
}

// AlbumWithQuote pairs catalog data with its current price quote.
type AlbumWithQuote struct {
	domain.Album
	Quote domain.PriceQuote `json:"quote"`
}

func (uc *CatalogUsecase) ListAlbums(ctx context.Context, filter domain.AlbumFilter) ([]AlbumWithQuote, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	albums, total, err := uc.productRepo.ListAlbums(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	refs := make([]domain.ProductRef, len(albums))
	for i := range albums {
		refs[i] = albums[i].Ref()
	}
	quotes, err := uc.pricing.QuoteMany(ctx, refs)
	if err != nil {
		return nil, 0, err
	}

	out := make([]AlbumWithQuote, len(albums))
	for i := range albums {
		out[i] = AlbumWithQuote{Album: albums[i], Quote: quotes[albums[i].Ref()]}
	}
	return out, total, nil
}

func (uc *CatalogUsecase) GetAlbum(ctx context.Context, id string) (*AlbumWithQuote, error) {
	album, err := uc.productRepo.GetAlbumByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quote, err := uc.pricing.Quote(ctx, album.Ref())
	if err != nil {
		return nil, err
	}
	return &AlbumWithQuote{Album: *album, Quote: quote}, nil
}

// AdjustStock applies an admin stock correction. A product coming back
// in stock (previous ≤ 0, new > 0) notifies every customer who
// wishlisted it and removes the satisfied wishlist entries.
func (uc *CatalogUsecase) AdjustStock(ctx context.Context, ref domain.ProductRef, delta int) error {
	if delta == 0 {
		return fmt.Errorf("stock adjustment cannot be zero")
	}

	return uc.txManager.Do(ctx, func(txCtx context.Context) error {
		previous, err := uc.productRepo.AdjustStock(txCtx, ref, delta)
		if err != nil {
			return err
		}
		if previous > 0 || previous+delta <= 0 {
			return nil
		}

		product, err := uc.productRepo.Resolve(txCtx, ref)
		if err != nil {
			return err
		}
		customers, err := uc.accountRepo.CustomersWishing(txCtx, ref)
		if err != nil {
			return err
		}

		for _, customerID := range customers {
			n := &domain.Notification{
				ID:         utils.GenerateUUID(),
				CustomerID: customerID,
				Text:       fmt.Sprintf("%s is back in stock", product.DisplayName()),
			}
			if err := uc.accountRepo.CreateNotification(txCtx, n); err != nil {
				return err
			}
			if err := uc.accountRepo.RemoveFromWishlist(txCtx, customerID, ref); err != nil {
				return err
			}
		}

		if len(customers) > 0 {
			logger.WithContext(txCtx).Info().
				Str("product", ref.String()).
				Int("notified", len(customers)).
				Msg("back-in-stock notifications sent")
		}
		return nil
	})
}
