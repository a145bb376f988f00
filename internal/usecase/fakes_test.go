package usecase

import (
	"context"
	"fmt"
	"maps"
	"mime/multipart"
	"slices"
	"sync"
	"time"

	"waxcrate-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// memStore backs every fake repository with plain maps so a test can
// wire the full usecase graph against one consistent dataset. The fake
// transaction manager snapshots it before each Do and restores it on
// error, which gives the tests real rollback semantics.
type memStore struct {
	mu sync.Mutex

	albums map[string]domain.Album

	priceLists map[string]domain.PriceList
	entries    map[string]map[domain.ProductRef]decimal.Decimal
	promotions []seededPromotion

	promoCodes map[string]domain.PromoCode

	carts map[string]domain.Cart
	items []domain.CartItem

	orders   map[string]domain.Order
	payments map[string]domain.Payment

	users         map[string]domain.User
	wishlist      []refEntry
	favorites     []refEntry
	notifications []domain.Notification

	returns map[string]domain.ReturnRequest
}

type seededPromotion struct {
	promo    domain.Promotion
	products []domain.ProductRef
}

type refEntry struct {
	customerID string
	ref        domain.ProductRef
}

func newMemStore() *memStore {
	return &memStore{
		albums:     map[string]domain.Album{},
		priceLists: map[string]domain.PriceList{},
		entries:    map[string]map[domain.ProductRef]decimal.Decimal{},
		promoCodes: map[string]domain.PromoCode{},
		carts:      map[string]domain.Cart{},
		orders:     map[string]domain.Order{},
		payments:   map[string]domain.Payment{},
		users:      map[string]domain.User{},
		returns:    map[string]domain.ReturnRequest{},
	}
}

func (s *memStore) clone() *memStore {
	c := &memStore{
		albums:        maps.Clone(s.albums),
		priceLists:    maps.Clone(s.priceLists),
		entries:       map[string]map[domain.ProductRef]decimal.Decimal{},
		promotions:    slices.Clone(s.promotions),
		promoCodes:    maps.Clone(s.promoCodes),
		carts:         maps.Clone(s.carts),
		items:         slices.Clone(s.items),
		orders:        maps.Clone(s.orders),
		payments:      maps.Clone(s.payments),
		users:         maps.Clone(s.users),
		wishlist:      slices.Clone(s.wishlist),
		favorites:     slices.Clone(s.favorites),
		notifications: slices.Clone(s.notifications),
		returns:       maps.Clone(s.returns),
	}
	for id, prices := range s.entries {
		c.entries[id] = maps.Clone(prices)
	}
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.albums = snap.albums
	s.priceLists = snap.priceLists
	s.entries = snap.entries
	s.promotions = snap.promotions
	s.promoCodes = snap.promoCodes
	s.carts = snap.carts
	s.items = snap.items
	s.orders = snap.orders
	s.payments = snap.payments
	s.users = snap.users
	s.wishlist = snap.wishlist
	s.favorites = snap.favorites
	s.notifications = snap.notifications
	s.returns = snap.returns
}

// fakeTxManager serializes transactions with the store mutex and rolls
// the store back when fn fails, mirroring the pgx transaction manager.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	snap := m.store.clone()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// --- products ---

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) GetAlbumByID(_ context.Context, id string) (*domain.Album, error) {
	a, ok := r.store.albums[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *fakeProductRepo) Resolve(ctx context.Context, ref domain.ProductRef) (domain.Sellable, error) {
	if ref.Kind != domain.ProductKindAlbum {
		return nil, domain.ErrNotFound
	}
	return r.GetAlbumByID(ctx, ref.ID)
}

func (r *fakeProductRepo) ResolveMany(ctx context.Context, refs []domain.ProductRef) (map[domain.ProductRef]domain.Sellable, error) {
	out := make(map[domain.ProductRef]domain.Sellable, len(refs))
	for _, ref := range refs {
		p, err := r.Resolve(ctx, ref)
		if err != nil {
			continue
		}
		out[ref] = p
	}
	return out, nil
}

func (r *fakeProductRepo) ListAlbums(_ context.Context, _ domain.AlbumFilter) ([]domain.Album, int64, error) {
	var out []domain.Album
	for _, a := range r.store.albums {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.Album) int {
		return cmpString(a.ID, b.ID)
	})
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, ref domain.ProductRef, qty int) error {
	a, ok := r.store.albums[ref.ID]
	if !ok {
		return domain.ErrNotFound
	}
	a.Stock -= qty
	r.store.albums[ref.ID] = a
	return nil
}

func (r *fakeProductRepo) IncrementTotalSold(_ context.Context, ref domain.ProductRef, qty int) error {
	a, ok := r.store.albums[ref.ID]
	if !ok {
		return domain.ErrNotFound
	}
	a.TotalSold += qty
	r.store.albums[ref.ID] = a
	return nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, ref domain.ProductRef, delta int) (int, error) {
	a, ok := r.store.albums[ref.ID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	previous := a.Stock
	a.Stock += delta
	r.store.albums[ref.ID] = a
	return previous, nil
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// --- pricing ---

type fakePricingRepo struct {
	store *memStore

	activeListLoads int
}

func (r *fakePricingRepo) GetActivePriceList(_ context.Context) (*domain.PriceList, error) {
	r.activeListLoads++
	for _, pl := range r.store.priceLists {
		if pl.IsActive {
			return &pl, nil
		}
	}
	return nil, nil
}

func (r *fakePricingRepo) GetEntryPrice(_ context.Context, priceListID string, ref domain.ProductRef) (decimal.Decimal, bool, error) {
	price, ok := r.store.entries[priceListID][ref]
	return price, ok, nil
}

func (r *fakePricingRepo) GetEntryPrices(_ context.Context, priceListID string, refs []domain.ProductRef) (map[domain.ProductRef]decimal.Decimal, error) {
	out := make(map[domain.ProductRef]decimal.Decimal, len(refs))
	for _, ref := range refs {
		if price, ok := r.store.entries[priceListID][ref]; ok {
			out[ref] = price
		}
	}
	return out, nil
}

func (r *fakePricingRepo) BestPromotionFor(_ context.Context, ref domain.ProductRef, now time.Time) (*domain.Promotion, error) {
	var best *domain.Promotion
	for i := range r.store.promotions {
		sp := r.store.promotions[i]
		if !sp.promo.InWindow(now) || !slices.Contains(sp.products, ref) {
			continue
		}
		if best == nil || sp.promo.DiscountPercentage.GreaterThan(best.DiscountPercentage) {
			p := sp.promo
			best = &p
		}
	}
	return best, nil
}

func (r *fakePricingRepo) BestPromotionsFor(ctx context.Context, refs []domain.ProductRef, now time.Time) (map[domain.ProductRef]domain.Promotion, error) {
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

func (r *fakePricingRepo) ActivatePriceList(_ context.Context, id string) error {
	if _, ok := r.store.priceLists[id]; !ok {
		return domain.ErrNotFound
	}
	for key, pl := range r.store.priceLists {
		pl.IsActive = key == id
		r.store.priceLists[key] = pl
	}
	return nil
}

func (r *fakePricingRepo) ListPromotions(_ context.Context) ([]domain.Promotion, error) {
	out := make([]domain.Promotion, 0, len(r.store.promotions))
	for _, sp := range r.store.promotions {
		out = append(out, sp.promo)
	}
	return out, nil
}

func (r *fakePricingRepo) CreatePromotion(_ context.Context, promo *domain.Promotion, products []domain.ProductRef) error {
	r.store.promotions = append(r.store.promotions, seededPromotion{
		promo:    *promo,
		products: slices.Clone(products),
	})
	return nil
}

func (r *fakePricingRepo) DeletePromotion(_ context.Context, id string) error {
	for i, sp := range r.store.promotions {
		if sp.promo.ID == id {
			r.store.promotions = slices.Delete(r.store.promotions, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakePricingRepo) ListPriceLists(_ context.Context) ([]domain.PriceList, error) {
	var out []domain.PriceList
	for _, pl := range r.store.priceLists {
		out = append(out, pl)
	}
	return out, nil
}

// --- promo codes ---

type fakePromoRepo struct {
	store *memStore
}

func (r *fakePromoRepo) GetByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	for _, p := range r.store.promoCodes {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, domain.ErrPromoNotFound
}

func (r *fakePromoRepo) GetByID(_ context.Context, id string) (*domain.PromoCode, error) {
	p, ok := r.store.promoCodes[id]
	if !ok {
		return nil, domain.ErrPromoNotFound
	}
	return &p, nil
}

func (r *fakePromoRepo) Create(_ context.Context, promo *domain.PromoCode) error {
	promo.CreatedAt = time.Now()
	r.store.promoCodes[promo.ID] = *promo
	return nil
}

func (r *fakePromoRepo) Update(_ context.Context, promo *domain.PromoCode) error {
	if _, ok := r.store.promoCodes[promo.ID]; !ok {
		return domain.ErrPromoNotFound
	}
	r.store.promoCodes[promo.ID] = *promo
	return nil
}

func (r *fakePromoRepo) Delete(_ context.Context, id string) error {
	delete(r.store.promoCodes, id)
	return nil
}

func (r *fakePromoRepo) List(_ context.Context, limit, offset int) ([]domain.PromoCode, error) {
	var out []domain.PromoCode
	for _, p := range r.store.promoCodes {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.PromoCode) int { return cmpString(a.ID, b.ID) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePromoRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.store.promoCodes)), nil
}

func (r *fakePromoRepo) IncrementUsage(_ context.Context, id string) error {
	p, ok := r.store.promoCodes[id]
	if !ok {
		return domain.ErrPromoNotFound
	}
	p.TimesUsed++
	r.store.promoCodes[id] = p
	return nil
}

// --- carts ---

type fakeCartRepo struct {
	store *memStore

	// beforeCreate, when set, runs at the top of CreateCart. Tests use
	// it to slip a competing cart in between lookup and insert.
	beforeCreate func()
}

func (r *fakeCartRepo) itemsOf(cartID string) []domain.CartItem {
	var out []domain.CartItem
	for _, item := range r.store.items {
		if item.CartID == cartID {
			out = append(out, item)
		}
	}
	return out
}

func (r *fakeCartRepo) GetOpenCartByCustomer(_ context.Context, customerID string) (*domain.Cart, error) {
	for _, c := range r.store.carts {
		if c.CustomerID == customerID && !c.InOrder {
			c.Items = r.itemsOf(c.ID)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) GetCartByID(_ context.Context, id string) (*domain.Cart, error) {
	c, ok := r.store.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Items = r.itemsOf(c.ID)
	return &c, nil
}

func (r *fakeCartRepo) CreateCart(_ context.Context, cart *domain.Cart) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	for _, c := range r.store.carts {
		if c.CustomerID == cart.CustomerID && !c.InOrder {
			return domain.ErrOpenCartExists
		}
	}
	cart.CreatedAt = time.Now()
	cart.UpdatedAt = cart.CreatedAt
	r.store.carts[cart.ID] = *cart
	return nil
}

func (r *fakeCartRepo) GetItems(_ context.Context, cartID string) ([]domain.CartItem, error) {
	return r.itemsOf(cartID), nil
}

func (r *fakeCartRepo) GetItemByRef(_ context.Context, cartID string, ref domain.ProductRef) (*domain.CartItem, error) {
	for _, item := range r.store.items {
		if item.CartID == cartID && item.Product == ref {
			return &item, nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) InsertItem(_ context.Context, item *domain.CartItem) error {
	r.store.items = append(r.store.items, *item)
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID string, quantity int) error {
	for i := range r.store.items {
		if r.store.items[i].ID == itemID {
			r.store.items[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeCartRepo) UpdateItemLineTotal(_ context.Context, itemID string, lineTotal decimal.Decimal) error {
	for i := range r.store.items {
		if r.store.items[i].ID == itemID {
			r.store.items[i].LineTotal = lineTotal
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeCartRepo) DeleteItem(_ context.Context, itemID string) error {
	r.store.items = slices.DeleteFunc(r.store.items, func(item domain.CartItem) bool {
		return item.ID == itemID
	})
	return nil
}

func (r *fakeCartRepo) DeleteItems(_ context.Context, cartID string) error {
	r.store.items = slices.DeleteFunc(r.store.items, func(item domain.CartItem) bool {
		return item.CartID == cartID
	})
	return nil
}

func (r *fakeCartRepo) UpdateAggregates(_ context.Context, cart *domain.Cart) error {
	stored, ok := r.store.carts[cart.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.TotalItems = cart.TotalItems
	stored.OriginalPrice = cart.OriginalPrice
	stored.FinalPrice = cart.FinalPrice
	stored.AppliedPromo = cart.AppliedPromo
	stored.UpdatedAt = time.Now()
	r.store.carts[cart.ID] = stored
	return nil
}

func (r *fakeCartRepo) SetInOrder(_ context.Context, cartID string, inOrder bool) error {
	c, ok := r.store.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	c.InOrder = inOrder
	r.store.carts[cartID] = c
	return nil
}

// --- orders ---

type fakeOrderRepo struct {
	store *memStore

	beforeCreate func()
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	for _, o := range r.store.orders {
		if o.CartID == order.CartID {
			return domain.ErrCartClosed
		}
	}
	order.CreatedAt = time.Now()
	r.store.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetOrderByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	// The tx manager already serializes; the lock is implicit.
	return r.GetOrderByID(ctx, id)
}

func (r *fakeOrderRepo) GetOrdersByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.store.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return cmpString(a.ID, b.ID) })
	return out, nil
}

func (r *fakeOrderRepo) SetPaid(_ context.Context, orderID string, status string) error {
	o, ok := r.store.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Paid = true
	o.Status = status
	r.store.orders[orderID] = o
	return nil
}

func (r *fakeOrderRepo) DeleteOrder(_ context.Context, orderID string) error {
	delete(r.store.orders, orderID)
	maps.DeleteFunc(r.store.payments, func(_ string, p domain.Payment) bool {
		return p.OrderID == orderID
	})
	return nil
}

func (r *fakeOrderRepo) CreatePayment(_ context.Context, payment *domain.Payment) error {
	payment.CreatedAt = time.Now()
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *fakeOrderRepo) GetPaymentBySessionID(_ context.Context, sessionID string) (*domain.Payment, error) {
	for _, p := range r.store.payments {
		if p.SessionID == sessionID {
			return &p, nil
		}
	}
	return nil, domain.ErrPaymentSessionUnknown
}

func (r *fakeOrderRepo) MarkPaymentSucceeded(_ context.Context, orderID string, paidAt time.Time) error {
	for id, p := range r.store.payments {
		if p.OrderID == orderID && p.Status == domain.PaymentStatusPending {
			p.Status = domain.PaymentStatusSuccess
			p.PaidAt = &paidAt
			r.store.payments[id] = p
		}
	}
	return nil
}

func (r *fakeOrderRepo) SumPaidByCustomer(_ context.Context, customerID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.store.payments {
		if p.Status != domain.PaymentStatusSuccess {
			continue
		}
		if o, ok := r.store.orders[p.OrderID]; ok && o.CustomerID == customerID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// --- accounts ---

type fakeAccountRepo struct {
	store *memStore
}

func (r *fakeAccountRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *fakeAccountRepo) UpdateContact(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.users[user.ID] = *user
	return nil
}

func addRefEntry(entries []refEntry, customerID string, ref domain.ProductRef) []refEntry {
	for _, e := range entries {
		if e.customerID == customerID && e.ref == ref {
			return entries
		}
	}
	return append(entries, refEntry{customerID: customerID, ref: ref})
}

func removeRefEntry(entries []refEntry, customerID string, ref domain.ProductRef) []refEntry {
	return slices.DeleteFunc(entries, func(e refEntry) bool {
		return e.customerID == customerID && e.ref == ref
	})
}

func listRefEntries(entries []refEntry, customerID string) []domain.ProductRef {
	var out []domain.ProductRef
	for _, e := range entries {
		if e.customerID == customerID {
			out = append(out, e.ref)
		}
	}
	return out
}

func (r *fakeAccountRepo) AddToWishlist(_ context.Context, customerID string, ref domain.ProductRef) error {
	r.store.wishlist = addRefEntry(r.store.wishlist, customerID, ref)
	return nil
}

func (r *fakeAccountRepo) RemoveFromWishlist(_ context.Context, customerID string, ref domain.ProductRef) error {
	r.store.wishlist = removeRefEntry(r.store.wishlist, customerID, ref)
	return nil
}

func (r *fakeAccountRepo) GetWishlist(_ context.Context, customerID string) ([]domain.ProductRef, error) {
	return listRefEntries(r.store.wishlist, customerID), nil
}

func (r *fakeAccountRepo) CustomersWishing(_ context.Context, ref domain.ProductRef) ([]string, error) {
	var out []string
	for _, e := range r.store.wishlist {
		if e.ref == ref {
			out = append(out, e.customerID)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) AddToFavorites(_ context.Context, customerID string, ref domain.ProductRef) error {
	r.store.favorites = addRefEntry(r.store.favorites, customerID, ref)
	return nil
}

func (r *fakeAccountRepo) RemoveFromFavorites(_ context.Context, customerID string, ref domain.ProductRef) error {
	r.store.favorites = removeRefEntry(r.store.favorites, customerID, ref)
	return nil
}

func (r *fakeAccountRepo) GetFavorites(_ context.Context, customerID string) ([]domain.ProductRef, error) {
	return listRefEntries(r.store.favorites, customerID), nil
}

func (r *fakeAccountRepo) CreateNotification(_ context.Context, n *domain.Notification) error {
	n.CreatedAt = time.Now()
	r.store.notifications = append(r.store.notifications, *n)
	return nil
}

func (r *fakeAccountRepo) UnreadNotifications(_ context.Context, customerID string) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.store.notifications {
		if n.CustomerID == customerID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) MarkNotificationsRead(_ context.Context, customerID string) error {
	for i := range r.store.notifications {
		if r.store.notifications[i].CustomerID == customerID {
			r.store.notifications[i].IsRead = true
		}
	}
	return nil
}

// --- returns ---

type fakeReturnRepo struct {
	store     *memStore
	createErr error
}

func (r *fakeReturnRepo) CreateReturn(_ context.Context, rr *domain.ReturnRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	rr.CreatedAt = time.Now()
	r.store.returns[rr.ID] = *rr
	return nil
}

func (r *fakeReturnRepo) GetReturnByID(_ context.Context, id string) (*domain.ReturnRequest, error) {
	rr, ok := r.store.returns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rr, nil
}

func (r *fakeReturnRepo) GetReturnsByCustomer(_ context.Context, customerID string) ([]domain.ReturnRequest, error) {
	var out []domain.ReturnRequest
	for _, rr := range r.store.returns {
		if rr.CustomerID == customerID {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) UpdateReturnStatus(_ context.Context, id, status string) error {
	rr, ok := r.store.returns[id]
	if !ok {
		return domain.ErrNotFound
	}
	rr.Status = status
	r.store.returns[id] = rr
	return nil
}

func (r *fakeReturnRepo) DeleteReturn(_ context.Context, id string) error {
	delete(r.store.returns, id)
	return nil
}

// --- gateway and storage ---

type fakeGateway struct {
	mu       sync.Mutex
	sessions int
	err      error
	lastReq  domain.CheckoutRequest
}

func (g *fakeGateway) OpenSession(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.sessions++
	g.lastReq = req
	return &domain.CheckoutSession{
		ID:          fmt.Sprintf("sess_%d", g.sessions),
		RedirectURL: fmt.Sprintf("https://pay.example.com/s/sess_%d", g.sessions),
	}, nil
}

type fakeStorage struct {
	uploads int
	deleted []string
}

func (s *fakeStorage) UploadAttachment(_ context.Context, _ multipart.File, fh *multipart.FileHeader) (string, error) {
	s.uploads++
	return "https://files.example.com/returns/" + fh.Filename, nil
}

func (s *fakeStorage) DeleteFile(_ context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

// fakeCache is a TTL-less map, enough for observing hit/miss behavior.
type fakeCache struct {
	data map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]interface{}{}}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.data[key] = value
}

func (c *fakeCache) Delete(key string) {
	delete(c.data, key)
}

func (c *fakeCache) Flush() {
	c.data = map[string]interface{}{}
}

// --- seeding helpers ---

type testEnv struct {
	store   *memStore
	tx      *fakeTxManager
	product *fakeProductRepo
	pricing *fakePricingRepo
	promo   *fakePromoRepo
	cart    *fakeCartRepo
	order   *fakeOrderRepo
	account *fakeAccountRepo
	returns *fakeReturnRepo
	gateway *fakeGateway

	pricingUC *PricingUsecase
	cartUC    *CartUsecase
}

func newTestEnv() *testEnv {
	store := newMemStore()
	env := &testEnv{
		store:   store,
		tx:      &fakeTxManager{store: store},
		product: &fakeProductRepo{store: store},
		pricing: &fakePricingRepo{store: store},
		promo:   &fakePromoRepo{store: store},
		cart:    &fakeCartRepo{store: store},
		order:   &fakeOrderRepo{store: store},
		account: &fakeAccountRepo{store: store},
		returns: &fakeReturnRepo{store: store},
		gateway: &fakeGateway{},
	}
	env.pricingUC = NewPricingUsecase(env.pricing, newFakeCache(), env.tx, time.Hour)
	env.cartUC = NewCartUsecase(env.cart, env.product, env.promo, env.pricingUC, env.tx, 10)
	return env
}

func (e *testEnv) orderUC() *OrderUsecase {
	return NewOrderUsecase(e.order, e.cart, e.product, e.promo, e.gateway, e.tx, GatewayConfig{
		Currency:   "usd",
		SuccessURL: "https://shop.example.com/api/v1/payments/success",
		CancelURL:  "https://shop.example.com/api/v1/payments/cancel",
	})
}

func (e *testEnv) seedAlbum(id, artist, name string, stock int, price int64) domain.ProductRef {
	e.store.albums[id] = domain.Album{
		ID:     id,
		Name:   name,
		Artist: artist,
		Format: "vinyl",
		Stock:  stock,
	}
	ref := domain.ProductRef{Kind: domain.ProductKindAlbum, ID: id}
	e.seedPrice(ref, decimal.NewFromInt(price))
	return ref
}

// seedPrice puts the price on the active list, creating one when missing.
func (e *testEnv) seedPrice(ref domain.ProductRef, price decimal.Decimal) {
	const listID = "pl-active"
	if _, ok := e.store.priceLists[listID]; !ok {
		e.store.priceLists[listID] = domain.PriceList{ID: listID, Name: "current", IsActive: true}
		e.store.entries[listID] = map[domain.ProductRef]decimal.Decimal{}
	}
	e.store.entries[listID][ref] = price
}

func (e *testEnv) seedPromotion(id string, pct int64, from, until time.Time, refs ...domain.ProductRef) {
	e.store.promotions = append(e.store.promotions, seededPromotion{
		promo: domain.Promotion{
			ID:                 id,
			Name:               id,
			StartDate:          from,
			EndDate:            until,
			DiscountPercentage: decimal.NewFromInt(pct),
			IsActive:           true,
		},
		products: refs,
	})
}

func (e *testEnv) seedPromoCode(id, code string, amount, minPurchase int64, maxUses int) {
	now := time.Now()
	e.store.promoCodes[id] = domain.PromoCode{
		ID:                id,
		Code:              code,
		DiscountAmount:    decimal.NewFromInt(amount),
		ValidFrom:         now.Add(-time.Hour),
		ValidUntil:        now.Add(24 * time.Hour),
		MaxUses:           maxUses,
		IsActive:          true,
		MinPurchaseAmount: decimal.NewFromInt(minPurchase),
	}
}
