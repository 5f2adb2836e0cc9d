package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

// OrderUseCase отменяет заказы и возвращает списанные остатки.
type OrderUseCase struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
	txManager   TxManager
	ledger      *StockLedger
	hooks       *CatalogHooks
	notifier    *OrderNotifier
	logger      logger.Logger
}

func NewOrderUC(
	orderRepo OrderRepository,
	productRepo ProductRepository,
	txManager TxManager,
	ledger *StockLedger,
	hooks *CatalogHooks,
	notifier *OrderNotifier,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		txManager:   txManager,
		ledger:      ledger,
		hooks:       hooks,
		notifier:    notifier,
		logger:      logger,
	}
}

// CancelOrder переводит заказ в cancelled и возвращает остатки по каждой позиции.
// Связка выбирается так же, как при списании: по сохранённым ID варианта и связки,
// а для позиций без варианта — связка товара по умолчанию.
func (o *OrderUseCase) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	const op = "OrderUseCase.CancelOrder"

	if _, err := uuid.Parse(orderID); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	var order *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = o.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == domain.OrderStatusCancelled {
			return e.ErrOrderAlreadyCancelled
		}

		if err := o.restoreStock(ctx, order); err != nil {
			return err
		}

		if err := o.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled); err != nil {
			return err
		}

		order.Status = domain.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.logger.Infof("order %s cancelled, stock restored for %d line(s)", order.ID, len(order.Items))

	o.notifier.Notify(ctx, EventOrderCancelled, order)

	return order, nil
}

func (o *OrderUseCase) restoreStock(ctx context.Context, order *domain.Order) error {
	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]struct{}, len(order.Items))
	for _, item := range order.Items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := o.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range order.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			o.logger.Warnf("order %s: product %s no longer exists, stock not restored", order.ID, item.ProductID)
			continue
		}

		var variantID any
		if item.Variant != nil {
			variantID = item.Variant.ID
		}

		if _, err := o.ledger.RestoreItem(ctx, product, variantID, item.MappingID, item.Quantity); err != nil {
			return err
		}
	}

	for _, id := range ids {
		if product, ok := byID[id]; ok {
			if err := o.hooks.AfterWrite(ctx, product); err != nil {
				return err
			}
		}
	}

	return nil
}
