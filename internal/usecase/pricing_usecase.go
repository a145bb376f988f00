package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/cache"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// activePriceListKey caches the single active price list; it changes
// rarely (admin action) and is read on every quote.
const activePriceListKey = "active_pricelist"

// PricingUsecase answers "what does this product cost right now".
// All arithmetic is decimal; a zero CurrentPrice means the product has
// no price set and cannot be purchased.
type PricingUsecase struct {
	pricingRepo domain.PricingRepository
	cache       cache.CacheService
	txManager   domain.TransactionManager
	listTTL     time.Duration
	now         func() time.Time
}

func NewPricingUsecase(pricingRepo domain.PricingRepository, cacheSvc cache.CacheService, txManager domain.TransactionManager, listTTL time.Duration) *PricingUsecase {
	return &PricingUsecase{
		pricingRepo: pricingRepo,
		cache:       cacheSvc,
		txManager:   txManager,
		listTTL:     listTTL,
		now:         time.Now,
	}
}

// ActivePriceList returns the active price list through the cache, or
// nil when no list is flagged active (degraded mode: everything quotes
// as zero).
func (uc *PricingUsecase) ActivePriceList(ctx context.Context) (*domain.PriceList, error) {
	if v, ok := uc.cache.Get(activePriceListKey); ok {
		if pl, ok := v.(*domain.PriceList); ok {
			return pl, nil
		}
	}

	pl, err := uc.pricingRepo.GetActivePriceList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active price list: %w", err)
	}
	// nil (no active list) is cached too, so a missing list does not
	// turn every quote into a DB probe.
	uc.cache.Set(activePriceListKey, pl, uc.listTTL)
	return pl, nil
}

// InvalidateActivePriceList drops the cached list. Called after an
// admin activates a different list.
func (uc *PricingUsecase) InvalidateActivePriceList() {
	uc.cache.Delete(activePriceListKey)
}

// Quote resolves (current price, discount percentage, discounted price)
// for one product as of now. Missing price-list entry or no active list
// yields all zeros, not an error.
func (uc *PricingUsecase) Quote(ctx context.Context, ref domain.ProductRef) (domain.PriceQuote, error) {
	pl, err := uc.ActivePriceList(ctx)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if pl == nil {
		return domain.PriceQuote{}, nil
	}

	price, ok, err := uc.pricingRepo.GetEntryPrice(ctx, pl.ID, ref)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("failed to look up price entry: %w", err)
	}
	if !ok {
		return domain.PriceQuote{}, nil
	}

	promo, err := uc.pricingRepo.BestPromotionFor(ctx, ref, uc.now())
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("failed to look up promotions: %w", err)
	}

	return buildQuote(price, promo), nil
}

// QuoteMany is the batch form of Quote, used by the cart recompute so
// an N-line cart costs two queries instead of 2N.
func (uc *PricingUsecase) QuoteMany(ctx context.Context, refs []domain.ProductRef) (map[domain.ProductRef]domain.PriceQuote, error) {
	quotes := make(map[domain.ProductRef]domain.PriceQuote, len(refs))
	if len(refs) == 0 {
		return quotes, nil
	}

	pl, err := uc.ActivePriceList(ctx)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		for _, ref := range refs {
			quotes[ref] = domain.PriceQuote{}
		}
		return quotes, nil
	}

	prices, err := uc.pricingRepo.GetEntryPrices(ctx, pl.ID, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up price entries: %w", err)
	}
	promos, err := uc.pricingRepo.BestPromotionsFor(ctx, refs, uc.now())
	if err != nil {
		return nil, fmt.Errorf("failed to look up promotions: %w", err)
	}

	for _, ref := range refs {
		price, ok := prices[ref]
		if !ok {
			quotes[ref] = domain.PriceQuote{}
			continue
		}
		var promo *domain.Promotion
		if p, ok := promos[ref]; ok {
			promo = &p
		}
		quotes[ref] = buildQuote(price, promo)
	}
	return quotes, nil
}

// buildQuote applies the best promotion to a base price:
// discounted = price × (100 − pct) / 100, decimal-exact.
func buildQuote(price decimal.Decimal, promo *domain.Promotion) domain.PriceQuote {
	q := domain.PriceQuote{
		CurrentPrice:    price,
		DiscountedPrice: price,
	}
	if promo == nil || promo.DiscountPercentage.IsZero() {
		return q
	}
	hundred := decimal.NewFromInt(100)
	q.DiscountPercentage = promo.DiscountPercentage
	q.DiscountedPrice = price.Mul(hundred.Sub(promo.DiscountPercentage)).Div(hundred)
	return q
}

// ActivatePriceList flags one list active, deactivates the rest and
// drops the cache so the change is visible immediately.
func (uc *PricingUsecase) ActivatePriceList(ctx context.Context, id string) error {
	if err := uc.pricingRepo.ActivatePriceList(ctx, id); err != nil {
		return err
	}
	uc.InvalidateActivePriceList()
	logger.Info().Str("price_list_id", id).Msg("price list activated")
	return nil
}

func (uc *PricingUsecase) ListPriceLists(ctx context.Context) ([]domain.PriceList, error) {
	return uc.pricingRepo.ListPriceLists(ctx)
}

// PromotionRequest is the admin input for creating a promotion.
type PromotionRequest struct {
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	StartDate          time.Time           `json:"startDate"`
	EndDate            time.Time           `json:"endDate"`
	DiscountPercentage decimal.Decimal     `json:"discountPercentage"`
	IsActive           bool                `json:"isActive"`
	Products           []domain.ProductRef `json:"products"`
}

func (r *PromotionRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("promotion name is required")
	}
	if r.DiscountPercentage.IsNegative() || r.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("discount percentage must be between 0 and 100")
	}
	if !r.EndDate.After(r.StartDate) {
		return fmt.Errorf("end_date must be after start_date")
	}
	if len(r.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}
	return nil
}

func (uc *PricingUsecase) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	return uc.pricingRepo.ListPromotions(ctx)
}

func (uc *PricingUsecase) CreatePromotion(ctx context.Context, req PromotionRequest) (*domain.Promotion, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	promo := &domain.Promotion{
		ID:                 utils.GenerateUUID(),
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           req.IsActive,
	}
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		return uc.pricingRepo.CreatePromotion(txCtx, promo, req.Products)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	logger.Info().Str("promotion_id", promo.ID).Str("name", promo.Name).Msg("promotion created")
	return promo, nil
}

func (uc *PricingUsecase) DeletePromotion(ctx context.Context, id string) error {
	return uc.pricingRepo.DeletePromotion(ctx, id)
}
