package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/ident"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutUseCase оформляет заказ из корзины.
//
// Проверка остатков, списание, расчёт цен и сохранение заказа выполняются в одной транзакции;
// списание идёт через compare-and-swap по количеству, поэтому параллельный заказ на ту же
// связку откатывает транзакцию вместо перепродажи.
type CheckoutUseCase struct {
	productRepo ProductRepository
	orderRepo   OrderRepository
	txManager   TxManager
	ledger      *StockLedger
	hooks       *CatalogHooks
	notifier    *OrderNotifier
	logger      logger.Logger
	now         clock
}

func NewCheckoutUC(
	productRepo ProductRepository,
	orderRepo OrderRepository,
	txManager TxManager,
	ledger *StockLedger,
	hooks *CatalogHooks,
	notifier *OrderNotifier,
	logger logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
		ledger:      ledger,
		hooks:       hooks,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// PlaceOrder проверяет форму и корзину, списывает остатки и сохраняет заказ.
func (c *CheckoutUseCase) PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error) {
	const op = "CheckoutUseCase.PlaceOrder"

	customer, err := ValidateCustomer(req.Customer)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	items, err := ParseCartItems(req.CartItems)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var order *domain.Order
	err = c.txManager.Do(ctx, func(ctx context.Context) error {
		products, err := c.fetchProducts(ctx, items)
		if err != nil {
			return err
		}

		if err := CheckAvailability(products, items); err != nil {
			return err
		}

		if err := c.deductStock(ctx, products, items); err != nil {
			return err
		}

		lines, err := buildOrderItems(products, items)
		if err != nil {
			return err
		}

		order = domain.NewOrder(uuid.NewString(), customer, lines, c.now().UTC())
		return c.orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("order %s placed: %d line(s), total %s", order.ID, len(order.Items), order.Total.StringFixed(2))

	c.notifier.Notify(ctx, EventOrderPlaced, order)

	return order, nil
}

// fetchProducts загружает опубликованные товары корзины и применяет к ним хук чтения.
// Ключ результата — нормализованный ID товара.
func (c *CheckoutUseCase) fetchProducts(ctx context.Context, items []domain.CartItem) (map[string]*domain.Product, error) {
	rawIDs := make([]any, 0, len(items))
	for _, item := range items {
		rawIDs = append(rawIDs, item.ID)
	}
	ids := ident.NormalizeAll(rawIDs)

	products, err := c.productRepo.FindPublishedByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		p := &products[i]
		c.hooks.AfterRead(ctx, p)
		byID[ident.Normalize(p.ID)] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &e.MissingProductsError{IDs: missing}
	}

	return byID, nil
}

// deductStock списывает остатки по каждой позиции и сохраняет новый агрегат у затронутых товаров.
func (c *CheckoutUseCase) deductStock(ctx context.Context, products map[string]*domain.Product, items []domain.CartItem) error {
	var touched []*domain.Product
	seen := make(map[string]struct{}, len(products))

	for _, item := range items {
		product := products[ident.Normalize(item.ID)]
		if _, err := c.ledger.DeductItem(ctx, product, item); err != nil {
			return err
		}

		if _, ok := seen[product.ID]; !ok {
			seen[product.ID] = struct{}{}
			touched = append(touched, product)
		}
	}

	for _, product := range touched {
		if err := c.hooks.AfterWrite(ctx, product); err != nil {
			return err
		}
	}

	return nil
}

// ValidateCustomer проверяет обязательные поля формы и адрес почты.
func ValidateCustomer(in domain.Customer) (domain.Customer, error) {
	c := domain.Customer{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		Note:    strings.TrimSpace(in.Note),
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.Customer{}, fmt.Errorf("%w: %s", e.ErrMissingFields, strings.Join(missing, ", "))
	}

	email, err := parseEmail(c.Email)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Email = email

	return c, nil
}

// parseEmail принимает один адрес RFC 5322 с доменом вида host.tld.
func parseEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", e.ErrInvalidEmail
	}

	_, domainPart, _ := strings.Cut(addr.Address, "@")
	if !strings.Contains(strings.Trim(domainPart, "."), ".") {
		return "", e.ErrInvalidEmail
	}

	return addr.Address, nil
}

// ParseCartItems разбирает JSON корзины. Числовые ID сохраняются как json.Number.
func ParseCartItems(raw string) ([]domain.CartItem, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, e.ErrEmptyCart
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var items []domain.CartItem
	if err := dec.Decode(&items); err != nil {
		return nil, e.ErrMalformedCart
	}

	if len(items) == 0 {
		return nil, e.ErrEmptyCart
	}

	for i, item := range items {
		if ident.Normalize(item.ID) == "" {
			return nil, fmt.Errorf("%w: item %d has no product id", e.ErrMalformedCart, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d", e.ErrInvalidQuantity, i)
		}
	}

	return items, nil
}

// CheckAvailability проверяет остатки по всем позициям сразу и собирает все нехватки в одну ошибку.
// Для варианта нужна найденная активная связка, для товара — достаточный TotalStock.
// Повторные позиции одной связки или товара суммируются.
func CheckAvailability(products map[string]*domain.Product, items []domain.CartItem) error {
	var shortfalls []e.Shortfall
	requested := make(map[string]int, len(items))

	for _, item := range items {
		product := products[ident.Normalize(item.ID)]

		if !isVariantScoped(item) {
			key := "product:" + product.ID
			need := requested[key] + item.Quantity
			if product.TotalStock <= 0 || product.TotalStock < need {
				shortfalls = append(shortfalls, e.Shortfall{
					Label:     productLabel(product),
					Requested: item.Quantity,
					Available: max(0, product.TotalStock-requested[key]),
				})
			}
			requested[key] = need
			continue
		}

		variantID, mappingID := requestedVariant(item.Variant)
		m, ok := ResolveMapping(product.Mappings, variantID, mappingID)
		if !ok {
			shortfalls = append(shortfalls, e.Shortfall{
				Label:  fmt.Sprintf("%s (variant %s)", productLabel(product), ident.Normalize(variantID)),
				Reason: e.ErrVariantNotFound.Error(),
			})
			continue
		}

		label := fmt.Sprintf("%s (%s)", productLabel(product), variantLabel(m))
		if !m.IsActive {
			shortfalls = append(shortfalls, e.Shortfall{Label: label, Reason: e.ErrVariantUnavailable.Error()})
			continue
		}

		key := "mapping:" + m.ID
		need := requested[key] + item.Quantity
		if m.Quantity <= 0 || m.Quantity < need {
			shortfalls = append(shortfalls, e.Shortfall{
				Label:     label,
				Requested: item.Quantity,
				Available: max(0, m.Quantity-requested[key]),
			})
		}
		requested[key] = need
	}

	if len(shortfalls) > 0 {
		return &e.StockShortfallError{Lines: shortfalls}
	}

	return nil
}

// buildOrderItems фиксирует цену покупки и слепок варианта для каждой позиции.
func buildOrderItems(products map[string]*domain.Product, items []domain.CartItem) ([]domain.OrderItem, error) {
	lines := make([]domain.OrderItem, 0, len(items))

	for _, item := range items {
		product := products[ident.Normalize(item.ID)]

		var m *domain.VariantMapping
		if isVariantScoped(item) {
			variantID, mappingID := requestedVariant(item.Variant)
			m, _ = ResolveMapping(product.Mappings, variantID, mappingID)
		}

		price, err := UnitPrice(product, m)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", product.ID, err)
		}

		line := domain.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     decimal.NewFromFloat(price),
		}

		if m != nil {
			line.MappingID = m.ID
			if v := m.Variant.Variant; v != nil {
				line.Variant = &domain.VariantSnapshot{ID: v.ID, Name: v.Name}
				if v.SKU != nil {
					line.Variant.SKU = *v.SKU
				}
			}
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func productLabel(p *domain.Product) string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

func variantLabel(m *domain.VariantMapping) string {
	if v := m.Variant.Variant; v != nil && v.Name != "" {
		return v.Name
	}
	if m.Variant.ID != "" {
		return m.Variant.ID
	}
	return m.ID
}
