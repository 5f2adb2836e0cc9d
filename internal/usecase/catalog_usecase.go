package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/ident"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const (
	defaultProductsLimit = 100
	maxProductsLimit     = 1000
)

// CatalogUseCase обслуживает чтение каталога витриной и правки из админки.
type CatalogUseCase struct {
	productRepo ProductRepository
	hooks       *CatalogHooks
	cacheRepo   CacheRepository
	logger      logger.Logger
	now         clock
}

func NewCatalogUC(
	productRepo ProductRepository,
	hooks *CatalogHooks,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo: productRepo,
		hooks:       hooks,
		cacheRepo:   cacheRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// ListProducts возвращает опубликованные товары с пересчитанными остатками.
func (c *CatalogUseCase) ListProducts(ctx context.Context, req *ListProductsReq) ([]domain.Product, error) {
	const op = "CatalogUseCase.ListProducts"

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultProductsLimit
	case limit > maxProductsLimit:
		limit = maxProductsLimit
	}

	products, err := c.productRepo.ListPublished(ctx, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.hooks.AfterReadAll(ctx, products)
	return products, nil
}

// GetProduct возвращает опубликованный товар. Неопубликованный товар для витрины не существует.
func (c *CatalogUseCase) GetProduct(ctx context.Context, productID any) (*domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	product, err := c.getProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !product.Published {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	return product, nil
}

// GetVariants возвращает активные варианты опубликованного товара в порядке ссылок.
func (c *CatalogUseCase) GetVariants(ctx context.Context, productID any) ([]VariantInfo, error) {
	const op = "CatalogUseCase.GetVariants"

	product, err := c.GetProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	variants := make([]VariantInfo, 0, len(product.Mappings))
	for _, ref := range product.Mappings {
		m := ref.Mapping
		if m == nil || !m.IsActive {
			continue
		}
		variants = append(variants, *NewVariantInfo(product, m))
	}

	return variants, nil
}

// QuotePrice считает цену товара или варианта так же, как при оформлении заказа.
func (c *CatalogUseCase) QuotePrice(ctx context.Context, req *PriceQuoteReq) (*PriceQuote, error) {
	const op = "CatalogUseCase.QuotePrice"

	product, err := c.getProduct(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !product.Published {
		return nil, e.Wrap(op, e.ErrProductUnavailable)
	}

	quote := &PriceQuote{Product: product}

	if ident.Normalize(req.VariantID) == "" {
		price, err := ProductPrice(product)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		quote.Price = price
		return quote, nil
	}

	m, ok := ResolveMapping(product.Mappings, req.VariantID, nil)
	if !ok {
		return nil, e.Wrap(op, e.ErrVariantNotFound)
	}

	if !m.IsActive {
		return nil, e.Wrap(op, e.ErrVariantUnavailable)
	}

	price, err := UnitPrice(product, m)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	quote.Price = price
	quote.Variant = NewVariantInfo(product, m)
	return quote, nil
}

// UpdateProduct применяет правку из админки, пересохраняет агрегат остатков и сбрасывает кэш sitemap.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, productID any, patch domain.ProductPatch) (*domain.Product, error) {
	const op = "CatalogUseCase.UpdateProduct"

	if patch.IsEmpty() {
		return nil, e.Wrap(op, e.ErrNothingToUpdate)
	}

	for _, p := range []*float64{patch.OriginalPrice, patch.DiscountedPrice} {
		if p != nil && !ValidPrice(p) {
			return nil, e.Wrap(op, e.ErrInvalidPriceForm)
		}
	}

	// Хук чтения не применяется: AfterWrite сравнивает пересчёт с сохранённым значением.
	product, err := c.loadProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	patch.Apply(product)
	now := c.now().UTC()
	product.UpdatedAt = &now

	if err := c.productRepo.Update(ctx, product); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := c.hooks.AfterWrite(ctx, product); err != nil {
		c.logger.Warnf("total stock reconcile failed: %v", e.Wrap(op, err))
	}

	if err := c.cacheRepo.DeleteSitemap(ctx); err != nil {
		c.logger.Warnf("Failed to invalidate sitemap cache: %v", e.Wrap(op, err))
	}

	return product, nil
}

// getProduct читает товар по любому представлению ID и применяет хук чтения.
func (c *CatalogUseCase) getProduct(ctx context.Context, productID any) (*domain.Product, error) {
	product, err := c.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	c.hooks.AfterRead(ctx, product)
	return product, nil
}

func (c *CatalogUseCase) loadProduct(ctx context.Context, productID any) (*domain.Product, error) {
	id := ident.Normalize(productID)
	if id == "" {
		return nil, e.ErrInvalidID
	}

	return c.productRepo.GetByID(ctx, id)
}
