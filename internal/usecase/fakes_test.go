package usecase

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// --- in-memory catalog ---

type setQuantityCall struct {
	ID       string
	Expected int
	Quantity int
}

// fakeCatalog хранит товары со ссылками на связки по ID, как строки таблиц.
type fakeCatalog struct {
	mu sync.Mutex

	products map[string]domain.Product
	order    []string
	mappings map[string]domain.VariantMapping

	productErr error
	mappingErr error
	setQtyErr  error

	setQuantityCalls []setQuantityCall
	totalStockWrites map[string]int
	updates          []domain.Product
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:         make(map[string]domain.Product),
		mappings:         make(map[string]domain.VariantMapping),
		totalStockWrites: make(map[string]int),
	}
}

func (f *fakeCatalog) addProduct(p domain.Product, mappings ...domain.VariantMapping) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range mappings {
		m.ProductID = p.ID
		f.mappings[m.ID] = m
		p.Mappings = append(p.Mappings, domain.MappingRef{ID: m.ID})
	}
	f.products[p.ID] = p
	f.order = append(f.order, p.ID)
}

func (f *fakeCatalog) quantity(mappingID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mappings[mappingID].Quantity
}

// populated раскрывает ссылки товара; ссылка без строки остаётся голой.
func (f *fakeCatalog) populated(p domain.Product) domain.Product {
	refs := make([]domain.MappingRef, 0, len(p.Mappings))
	for _, ref := range p.Mappings {
		out := domain.MappingRef{ID: ref.ID}
		if m, ok := f.mappings[ref.ID]; ok {
			out.Mapping = &m
		}
		refs = append(refs, out)
	}
	p.Mappings = refs
	return p
}

func (f *fakeCatalog) snapshot() map[string]domain.VariantMapping {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.mappings)
}

func (f *fakeCatalog) restore(s map[string]domain.VariantMapping) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings = s
}

type fakeProductRepo struct{ c *fakeCatalog }

func (r fakeProductRepo) find(ids []string, publishedOnly bool) ([]domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if r.c.productErr != nil {
		return nil, r.c.productErr
	}

	var out []domain.Product
	for _, id := range ids {
		p, ok := r.c.products[id]
		if !ok || (publishedOnly && !p.Published) {
			continue
		}
		out = append(out, r.c.populated(p))
	}
	return out, nil
}

func (r fakeProductRepo) FindPublishedByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	return r.find(ids, true)
}

func (r fakeProductRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	return r.find(ids, false)
}

func (r fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if r.c.productErr != nil {
		return nil, r.c.productErr
	}

	p, ok := r.c.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	out := r.c.populated(p)
	return &out, nil
}

func (r fakeProductRepo) ListPublished(_ context.Context, limit int) ([]domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if r.c.productErr != nil {
		return nil, r.c.productErr
	}

	var out []domain.Product
	for _, id := range r.c.order {
		if p := r.c.products[id]; p.Published && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	stored, ok := r.c.products[product.ID]
	if !ok {
		return e.ErrProductNotFound
	}
	stored.Title = product.Title
	stored.OriginalPrice = product.OriginalPrice
	stored.DiscountedPrice = product.DiscountedPrice
	stored.Published = product.Published
	stored.UpdatedAt = product.UpdatedAt
	r.c.products[product.ID] = stored
	r.c.updates = append(r.c.updates, *product)
	return nil
}

func (r fakeProductRepo) SetTotalStock(_ context.Context, id string, total int) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	p := r.c.products[id]
	p.TotalStock = total
	r.c.products[id] = p
	r.c.totalStockWrites[id] = total
	return nil
}

type fakeMappingRepo struct{ c *fakeCatalog }

func (r fakeMappingRepo) FindByIDs(_ context.Context, ids []string, limit int) ([]domain.VariantMapping, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if r.c.mappingErr != nil {
		return nil, r.c.mappingErr
	}

	var out []domain.VariantMapping
	for _, id := range ids {
		if m, ok := r.c.mappings[id]; ok && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r fakeMappingRepo) SetQuantity(_ context.Context, id string, expected, quantity int) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if r.c.setQtyErr != nil {
		return r.c.setQtyErr
	}

	m, ok := r.c.mappings[id]
	if !ok || m.Quantity != expected {
		return e.ErrStockConflict
	}
	m.Quantity = quantity
	r.c.mappings[id] = m
	r.c.setQuantityCalls = append(r.c.setQuantityCalls, setQuantityCall{ID: id, Expected: expected, Quantity: quantity})
	return nil
}

// fakeTxManager откатывает остатки каталога, если fn вернула ошибку.
type fakeTxManager struct {
	c     *fakeCatalog
	calls int
}

func (t *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	before := t.c.snapshot()
	if err := fn(ctx); err != nil {
		t.c.restore(before)
		return err
	}
	return nil
}

// --- orders, outbox ---

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return e.ErrOrderNotFound
	}
	if o.Status != from {
		return e.ErrOrderAlreadyCancelled
	}
	o.Status = to
	r.orders[id] = o
	return nil
}

type fakeOutboxRepo struct {
	mu        sync.Mutex
	events    []*OutboxEvent
	createErr error
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return event, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) ReturnToPending(context.Context, int64) error { return nil }

// --- blog, cache, storage ---

type fakeBlogRepo struct {
	posts []domain.BlogPost
	err   error
}

func (r *fakeBlogRepo) ListPublished(_ context.Context, limit int) ([]domain.BlogPost, error) {
	if r.err != nil {
		return nil, r.err
	}

	var out []domain.BlogPost
	for _, p := range r.posts {
		if p.Published {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCache struct {
	document  []byte
	getErr    error
	setErr    error
	deleteErr error
	sets      int
	deletes   int
}

func (c *fakeCache) GetSitemap(context.Context) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.document == nil {
		return nil, ErrCacheMiss
	}
	return c.document, nil
}

func (c *fakeCache) SetSitemap(_ context.Context, document []byte) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.document = document
	return nil
}

func (c *fakeCache) DeleteSitemap(context.Context) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deletes++
	c.document = nil
	return nil
}

type fakeStorage struct {
	uploaded []byte
	err      error
}

func (s *fakeStorage) Upload(_ context.Context, document []byte) (*PublishSitemapRes, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploaded = document
	return NewPublishSitemapRes("storefront-public", "sitemap.xml", int64(len(document)), "etag"), nil
}

// --- helpers ---

func ptr[T any](v T) *T { return &v }

func fixedClock(t time.Time) clock {
	return func() time.Time { return t }
}

type checkoutFixture struct {
	catalog  *fakeCatalog
	orders   *fakeOrderRepo
	outbox   *fakeOutboxRepo
	tx       *fakeTxManager
	checkout *CheckoutUseCase
	cancel   *OrderUseCase
}

func newCheckoutFixture() *checkoutFixture {
	log := logger.NewNopLogger()
	catalog := newFakeCatalog()
	orders := newFakeOrderRepo()
	outbox := &fakeOutboxRepo{}
	tx := &fakeTxManager{c: catalog}

	products := fakeProductRepo{c: catalog}
	mappings := fakeMappingRepo{c: catalog}
	ledger := NewStockLedger(mappings, log)
	hooks := NewCatalogHooks(mappings, products, log)
	notifier := NewOrderNotifier(outbox, log)

	return &checkoutFixture{
		catalog:  catalog,
		orders:   orders,
		outbox:   outbox,
		tx:       tx,
		checkout: NewCheckoutUC(products, orders, tx, ledger, hooks, notifier, log),
		cancel:   NewOrderUC(orders, products, tx, ledger, hooks, notifier, log),
	}
}
