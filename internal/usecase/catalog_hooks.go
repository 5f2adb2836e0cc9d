package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// mappingFetchLimit — верхняя граница выборки связок одного товара.
const mappingFetchLimit = 1000

// CatalogHooks пересчитывает агрегированный остаток товара при чтении и записи.
//
// При чтении суммируются все связки, на которые ссылается товар, без фильтра по IsActive.
// Проверка остатков при оформлении заказа, напротив, учитывает только активные связки.
type CatalogHooks struct {
	mappingRepo VariantMappingRepository
	productRepo ProductRepository
	logger      logger.Logger
}

func NewCatalogHooks(mappingRepo VariantMappingRepository, productRepo ProductRepository, logger logger.Logger) *CatalogHooks {
	return &CatalogHooks{
		mappingRepo: mappingRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// TotalStock считает сумму остатков по связкам товара. Без ссылок — 0;
// при ошибке или без репозитория — ранее сохранённое значение.
func (h *CatalogHooks) TotalStock(ctx context.Context, product *domain.Product) int {
	ids := product.MappingIDs()
	if len(ids) == 0 {
		return 0
	}

	if h == nil || h.mappingRepo == nil {
		return product.TotalStock
	}

	mappings, err := h.mappingRepo.FindByIDs(ctx, ids, mappingFetchLimit)
	if err != nil {
		h.logger.Warnf("total stock recompute failed for product %s, keeping %d: %v", product.ID, product.TotalStock, err)
		return product.TotalStock
	}

	total := 0
	for _, m := range mappings {
		total += m.Quantity
	}

	return total
}

// AfterRead подставляет пересчитанный остаток в прочитанный товар.
func (h *CatalogHooks) AfterRead(ctx context.Context, product *domain.Product) {
	product.TotalStock = h.TotalStock(ctx, product)
}

// AfterReadAll применяет AfterRead к каждому товару списка.
func (h *CatalogHooks) AfterReadAll(ctx context.Context, products []domain.Product) {
	for i := range products {
		h.AfterRead(ctx, &products[i])
	}
}

// AfterWrite пересчитывает остаток и сохраняет его, только если он изменился.
func (h *CatalogHooks) AfterWrite(ctx context.Context, product *domain.Product) error {
	const op = "CatalogHooks.AfterWrite"

	total := h.TotalStock(ctx, product)
	if total == product.TotalStock {
		return nil
	}

	if h == nil || h.productRepo == nil {
		return nil
	}

	if err := h.productRepo.SetTotalStock(ctx, product.ID, total); err != nil {
		return e.Wrap(op, err)
	}

	product.TotalStock = total
	return nil
}
