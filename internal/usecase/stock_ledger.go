package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// Deduct возвращает остаток после списания, не опускаясь ниже нуля.
func Deduct(m *domain.VariantMapping, quantity int) int {
	return max(0, m.Quantity-quantity)
}

// Restore возвращает остаток после возврата. Верхней границы нет.
func Restore(m *domain.VariantMapping, quantity int) int {
	return m.Quantity + quantity
}

// StockLedger списывает и возвращает остатки на связках товара.
type StockLedger struct {
	mappingRepo VariantMappingRepository
	logger      logger.Logger
}

func NewStockLedger(mappingRepo VariantMappingRepository, logger logger.Logger) *StockLedger {
	return &StockLedger{
		mappingRepo: mappingRepo,
		logger:      logger,
	}
}

// DeductItem списывает остаток под позицию корзины. Возвращает изменённую связку
// или nil, если менять нечего (вариант не указан и у товара нет связки по умолчанию).
func (s *StockLedger) DeductItem(ctx context.Context, product *domain.Product, item domain.CartItem) (*domain.VariantMapping, error) {
	const op = "StockLedger.DeductItem"

	variantID, mappingID := requestedVariant(item.Variant)
	m := s.selectMapping(product, variantID, mappingID)
	if m == nil {
		return nil, nil
	}

	if err := s.apply(ctx, m, Deduct(m, item.Quantity)); err != nil {
		return nil, e.Wrap(op, err)
	}

	return m, nil
}

// RestoreItem возвращает остаток по той же логике выбора связки, что и DeductItem.
func (s *StockLedger) RestoreItem(ctx context.Context, product *domain.Product, variantID, mappingID any, quantity int) (*domain.VariantMapping, error) {
	const op = "StockLedger.RestoreItem"

	m := s.selectMapping(product, variantID, mappingID)
	if m == nil {
		return nil, nil
	}

	if err := s.apply(ctx, m, Restore(m, quantity)); err != nil {
		return nil, e.Wrap(op, err)
	}

	return m, nil
}

func (s *StockLedger) selectMapping(product *domain.Product, variantID, mappingID any) *domain.VariantMapping {
	if hasVariantRequest(variantID, mappingID) {
		m, ok := ResolveMapping(product.Mappings, variantID, mappingID)
		if !ok {
			s.logger.Warnf("no mapping resolved for product %s, variant %v", product.ID, variantID)
			return nil
		}
		return m
	}

	return product.DefaultMapping()
}

// apply сохраняет только количество; при успехе обновляет связку в памяти,
// чтобы следующая позиция той же связки сравнивала уже новое значение.
func (s *StockLedger) apply(ctx context.Context, m *domain.VariantMapping, quantity int) error {
	if quantity == m.Quantity {
		return nil
	}

	if err := s.mappingRepo.SetQuantity(ctx, m.ID, m.Quantity, quantity); err != nil {
		return err
	}

	s.logger.Debugf("mapping %s quantity %d -> %d", m.ID, m.Quantity, quantity)
	m.Quantity = quantity
	return nil
}
