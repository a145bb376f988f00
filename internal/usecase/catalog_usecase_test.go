package usecase

import (
	"context"
	"testing"
	"time"

	"waxcrate-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogUC(env *testEnv) *CatalogUsecase {
	return NewCatalogUsecase(env.product, env.account, env.pricingUC, env.tx)
}

func TestListAlbumsCarriesQuotes(t *testing.T) {
	env := newTestEnv()
	uc := newCatalogUC(env)
	ctx := context.Background()
	now := time.Now()

	a := env.seedAlbum("a1", "Bjork", "Homogenic", 4, 3200)
	env.seedAlbum("a2", "Arca", "KiCk i", 2, 2400)
	env.seedPromotion("icelandic", 25, now.Add(-time.Hour), now.Add(time.Hour), a)

	albums, total, err := uc.ListAlbums(ctx, domain.AlbumFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, albums, 2)
	assert.Equal(t, "2400", albums[0].Quote.DiscountedPrice.String())
	assert.Equal(t, "2400", albums[1].Quote.CurrentPrice.String())
}

func TestGetAlbum(t *testing.T) {
	env := newTestEnv()
	uc := newCatalogUC(env)
	ctx := context.Background()
	env.seedAlbum("a1", "Sufjan Stevens", "Illinois", 3, 2700)

	got, err := uc.GetAlbum(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Illinois", got.Name)
	assert.Equal(t, "2700", got.Quote.CurrentPrice.String())

	_, err = uc.GetAlbum(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStockBackInStockFanOut(t *testing.T) {
	env := newTestEnv()
	uc := newCatalogUC(env)
	ctx := context.Background()
	ref := env.seedAlbum("a1", "Duster", "Stratosphere", 0, 2300)
	other := env.seedAlbum("a2", "Codeine", "Frigid Stars", 0, 2300)

	require.NoError(t, env.account.AddToWishlist(ctx, "cust-1", ref))
	require.NoError(t, env.account.AddToWishlist(ctx, "cust-2", ref))
	require.NoError(t, env.account.AddToWishlist(ctx, "cust-1", other))

	require.NoError(t, uc.AdjustStock(ctx, ref, 5))

	assert.Equal(t, 5, env.store.albums["a1"].Stock)

	for _, cust := range []string{"cust-1", "cust-2"} {
		ns, err := env.account.UnreadNotifications(ctx, cust)
		require.NoError(t, err)
		require.Len(t, ns, 1, "each wishing customer is notified once")
		assert.Equal(t, "Duster – Stratosphere is back in stock", ns[0].Text)
	}

	wl, err := env.account.GetWishlist(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductRef{other}, wl, "the satisfied entry is removed, others stay")
}

func TestAdjustStockNoFanOutCases(t *testing.T) {
	ctx := context.Background()

	t.Run("already in stock", func(t *testing.T) {
		env := newTestEnv()
		uc := newCatalogUC(env)
		ref := env.seedAlbum("a1", "A", "B", 3, 100)
		require.NoError(t, env.account.AddToWishlist(ctx, "cust-1", ref))

		require.NoError(t, uc.AdjustStock(ctx, ref, 2))
		ns, _ := env.account.UnreadNotifications(ctx, "cust-1")
		assert.Empty(t, ns)
	})

	t.Run("still out of stock after adjustment", func(t *testing.T) {
		env := newTestEnv()
		uc := newCatalogUC(env)
		ref := env.seedAlbum("a1", "A", "B", -3, 100)
		require.NoError(t, env.account.AddToWishlist(ctx, "cust-1", ref))

		require.NoError(t, uc.AdjustStock(ctx, ref, 2))
		ns, _ := env.account.UnreadNotifications(ctx, "cust-1")
		assert.Empty(t, ns)
		wl, _ := env.account.GetWishlist(ctx, "cust-1")
		assert.Len(t, wl, 1, "wishlist entry survives until the product is actually back")
	})

	t.Run("negative delta", func(t *testing.T) {
		env := newTestEnv()
		uc := newCatalogUC(env)
		ref := env.seedAlbum("a1", "A", "B", 5, 100)

		require.NoError(t, uc.AdjustStock(ctx, ref, -2))
		assert.Equal(t, 3, env.store.albums["a1"].Stock)
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		env := newTestEnv()
		uc := newCatalogUC(env)
		ref := env.seedAlbum("a1", "A", "B", 5, 100)

		assert.Error(t, uc.AdjustStock(ctx, ref, 0))
	})
}
