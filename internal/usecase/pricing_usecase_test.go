package usecase

import (
	"context"
	"testing"
	"time"

	"waxcrate-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteAppliesBestPromotion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	ref := env.seedAlbum("a1", "Khruangbin", "Mordechai", 10, 2000)
	env.seedPromotion("spring", 15, now.Add(-time.Hour), now.Add(time.Hour), ref)

	quote, err := env.pricingUC.Quote(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "2000", quote.CurrentPrice.String())
	assert.Equal(t, "15", quote.DiscountPercentage.String())
	assert.Equal(t, "1700", quote.DiscountedPrice.String(), "2000 at 15 percent off is exactly 1700")

	lineTotal := quote.DiscountedPrice.Mul(decimal.NewFromInt(3))
	assert.Equal(t, "5100", lineTotal.String())
}

func TestQuotePicksHighestDiscount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	ref := env.seedAlbum("a1", "Portishead", "Dummy", 5, 1000)
	env.seedPromotion("small", 5, now.Add(-time.Hour), now.Add(time.Hour), ref)
	env.seedPromotion("big", 30, now.Add(-time.Hour), now.Add(time.Hour), ref)
	env.seedPromotion("expired", 90, now.Add(-3*time.Hour), now.Add(-time.Hour), ref)

	quote, err := env.pricingUC.Quote(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "30", quote.DiscountPercentage.String())
	assert.Equal(t, "700", quote.DiscountedPrice.String())
}

func TestQuoteDegradedModes(t *testing.T) {
	ctx := context.Background()

	t.Run("no active price list quotes zero", func(t *testing.T) {
		env := newTestEnv()
		env.store.albums["a1"] = domain.Album{ID: "a1", Name: "X", Artist: "Y", Stock: 1}

		quote, err := env.pricingUC.Quote(ctx, domain.ProductRef{Kind: domain.ProductKindAlbum, ID: "a1"})
		require.NoError(t, err)
		assert.True(t, quote.CurrentPrice.IsZero())
		assert.True(t, quote.DiscountedPrice.IsZero())
	})

	t.Run("missing entry quotes zero", func(t *testing.T) {
		env := newTestEnv()
		env.seedAlbum("priced", "A", "B", 1, 500)
		env.store.albums["unpriced"] = domain.Album{ID: "unpriced", Name: "X", Artist: "Y", Stock: 1}

		quote, err := env.pricingUC.Quote(ctx, domain.ProductRef{Kind: domain.ProductKindAlbum, ID: "unpriced"})
		require.NoError(t, err)
		assert.True(t, quote.CurrentPrice.IsZero())
	})
}

func TestQuoteManyMatchesQuote(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	a := env.seedAlbum("a1", "Boards of Canada", "Geogaddi", 3, 3500)
	b := env.seedAlbum("a2", "Burial", "Untrue", 3, 2800)
	env.seedPromotion("idm", 10, now.Add(-time.Hour), now.Add(time.Hour), a)

	quotes, err := env.pricingUC.QuoteMany(ctx, []domain.ProductRef{a, b})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "3150", quotes[a].DiscountedPrice.String())
	assert.Equal(t, "2800", quotes[b].DiscountedPrice.String())
	assert.True(t, quotes[b].DiscountPercentage.IsZero())
}

func TestActivePriceListIsCached(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAlbum("a1", "A", "B", 1, 100)

	_, err := env.pricingUC.ActivePriceList(ctx)
	require.NoError(t, err)
	_, err = env.pricingUC.ActivePriceList(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.pricing.activeListLoads, "second read is served from cache")
}

func TestActivatePriceListInvalidatesCache(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ref := env.seedAlbum("a1", "A", "B", 1, 100)

	env.store.priceLists["pl-new"] = domain.PriceList{ID: "pl-new", Name: "next season"}
	env.store.entries["pl-new"] = map[domain.ProductRef]decimal.Decimal{
		ref: decimal.NewFromInt(150),
	}

	quote, err := env.pricingUC.Quote(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, "100", quote.CurrentPrice.String())

	require.NoError(t, env.pricingUC.ActivatePriceList(ctx, "pl-new"))

	quote, err = env.pricingUC.Quote(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "150", quote.CurrentPrice.String(), "new list visible immediately after activation")
}

func TestCreatePromotionTakesEffectOnQuotes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	ref := env.seedAlbum("a1", "Stereolab", "Dots and Loops", 4, 2400)

	promo, err := env.pricingUC.CreatePromotion(ctx, PromotionRequest{
		Name:               "Krautrock week",
		StartDate:          now.Add(-time.Hour),
		EndDate:            now.Add(24 * time.Hour),
		DiscountPercentage: decimal.NewFromInt(25),
		IsActive:           true,
		Products:           []domain.ProductRef{ref},
	})
	require.NoError(t, err)
	require.NotEmpty(t, promo.ID)

	quote, err := env.pricingUC.Quote(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "1800", quote.DiscountedPrice.String())

	promos, err := env.pricingUC.ListPromotions(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "Krautrock week", promos[0].Name)

	require.NoError(t, env.pricingUC.DeletePromotion(ctx, promo.ID))

	quote, err = env.pricingUC.Quote(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "2400", quote.DiscountedPrice.String(), "deleted promotion no longer discounts")

	assert.ErrorIs(t, env.pricingUC.DeletePromotion(ctx, promo.ID), domain.ErrNotFound)
}

func TestCreatePromotionValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	ref := env.seedAlbum("a1", "Neu!", "Neu! 75", 2, 1500)
	valid := PromotionRequest{
		Name:               "ok",
		StartDate:          now,
		EndDate:            now.Add(time.Hour),
		DiscountPercentage: decimal.NewFromInt(10),
		IsActive:           true,
		Products:           []domain.ProductRef{ref},
	}

	cases := map[string]func(*PromotionRequest){
		"blank name":          func(r *PromotionRequest) { r.Name = "   " },
		"negative percentage": func(r *PromotionRequest) { r.DiscountPercentage = decimal.NewFromInt(-1) },
		"over 100 percent":    func(r *PromotionRequest) { r.DiscountPercentage = decimal.NewFromInt(101) },
		"end before start":    func(r *PromotionRequest) { r.EndDate = r.StartDate.Add(-time.Minute) },
		"no products":         func(r *PromotionRequest) { r.Products = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := env.pricingUC.CreatePromotion(ctx, req)
			assert.Error(t, err)
		})
	}

	_, err := env.pricingUC.CreatePromotion(ctx, valid)
	assert.NoError(t, err)
}

func TestNoActiveListResultIsCachedToo(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	pl, err := env.pricingUC.ActivePriceList(ctx)
	require.NoError(t, err)
	require.Nil(t, pl)

	pl, err = env.pricingUC.ActivePriceList(ctx)
	require.NoError(t, err)
	require.Nil(t, pl)
	assert.Equal(t, 1, env.pricing.activeListLoads)
}
