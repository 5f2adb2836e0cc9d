package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validCustomer = domain.Customer{
	Name:    "Ada Lovelace",
	Email:   "ada@example.com",
	Phone:   "+44 20 0000 0000",
	Address: "12 St James's Square, London",
}

func seedTee(c *fakeCatalog) {
	c.addProduct(
		domain.Product{ID: "P1", Slug: "tee", Title: "Tee", OriginalPrice: 15, Published: true},
		domain.VariantMapping{
			ID:       "M1",
			Variant:  domain.VariantRef{ID: "V1", Variant: &domain.Variant{ID: "V1", Name: "Small", Price: ptr(10.0), SKU: ptr("TEE-S")}},
			Quantity: 5,
			IsActive: true,
		},
		domain.VariantMapping{
			ID:        "M2",
			Variant:   domain.VariantRef{ID: "V2", Variant: &domain.Variant{ID: "V2", Name: "Large"}},
			Quantity:  1,
			IsActive:  true,
			IsDefault: true,
		},
	)
}

func TestPlaceOrder_EndToEnd(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)

	order, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":2,"variant":{"id":"V1"}}]`))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(20).Equal(order.Total), "total %s", order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, 3, f.catalog.quantity("M1"))
	assert.Equal(t, 1, f.catalog.quantity("M2"))

	require.Len(t, order.Items, 1)
	line := order.Items[0]
	assert.Equal(t, "P1", line.ProductID)
	assert.Equal(t, "M1", line.MappingID)
	assert.True(t, decimal.NewFromInt(10).Equal(line.Price))
	assert.Equal(t, &domain.VariantSnapshot{ID: "V1", Name: "Small", SKU: "TEE-S"}, line.Variant)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(order.Total))

	assert.Equal(t, 4, f.catalog.totalStockWrites["P1"])

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, EventOrderPlaced, f.outbox.events[0].EventType)
	assert.Equal(t, order.ID, f.outbox.events[0].AggregateID)
	assert.Equal(t, 1, f.tx.calls)
}

func TestPlaceOrder_ResolvesMappingIDAndProductScopedItems(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)

	order, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":1,"variant":{"id":"M1"}},{"id":"P1","quantity":1}]`))
	require.NoError(t, err)

	// M1 по собственному ID; позиция без варианта списывается со связки по умолчанию.
	assert.Equal(t, 4, f.catalog.quantity("M1"))
	assert.Equal(t, 0, f.catalog.quantity("M2"))

	require.Len(t, order.Items, 2)
	assert.Nil(t, order.Items[1].Variant)
	assert.True(t, decimal.NewFromInt(15).Equal(order.Items[1].Price))
	assert.True(t, decimal.NewFromInt(25).Equal(order.Total))
}

func TestPlaceOrder_ObjectIDRepresentations(t *testing.T) {
	f := newCheckoutFixture()
	productID := primitive.NewObjectID()
	variantID := primitive.NewObjectID()

	f.catalog.addProduct(
		domain.Product{ID: productID.Hex(), Title: "Mug", OriginalPrice: 8, Published: true},
		domain.VariantMapping{
			ID:       primitive.NewObjectID().Hex(),
			Variant:  domain.VariantRef{ID: variantID.Hex(), Variant: &domain.Variant{ID: variantID.Hex(), Name: "Blue", Price: ptr(8.0)}},
			Quantity: 2,
			IsActive: true,
		},
	)

	cart := `[{"id":{"$oid":"` + productID.Hex() + `"},"quantity":2,"variant":{"id":{"type":"Buffer","data":[` + byteList(variantID[:]) + `]}}}]`

	order, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer, cart))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(16).Equal(order.Total))
	assert.Equal(t, variantID.Hex(), order.Items[0].Variant.ID)
}

func TestPlaceOrder_VariantWithoutPriceIsFree(t *testing.T) {
	f := newCheckoutFixture()
	f.catalog.addProduct(
		domain.Product{ID: "P9", Title: "Sticker", OriginalPrice: 7, Published: true},
		domain.VariantMapping{
			ID:       "M9",
			Variant:  domain.VariantRef{ID: "V9", Variant: &domain.Variant{ID: "V9", Name: "Holo"}},
			Quantity: 5,
			IsActive: true,
		},
	)

	order, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P9","quantity":2,"variant":{"id":"V9"}}]`))
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, decimal.Zero.Equal(order.Items[0].Price), "price %s", order.Items[0].Price)
	assert.True(t, decimal.Zero.Equal(order.Total), "total %s", order.Total)
	assert.Equal(t, 3, f.catalog.quantity("M9"))
}

func TestPlaceOrder_AggregatesShortfalls(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)
	f.catalog.addProduct(
		domain.Product{ID: "P2", Title: "Mug", OriginalPrice: 8, Published: true},
		domain.VariantMapping{ID: "M3", Variant: domain.VariantRef{ID: "V3"}, Quantity: 1, IsActive: true, IsDefault: true},
	)

	_, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":6,"variant":{"id":"V1"}},{"id":"P2","quantity":3}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrInsufficientStock)

	var shortfall *e.StockShortfallError
	require.True(t, errors.As(err, &shortfall))
	require.Len(t, shortfall.Lines, 2)

	msg, ok := e.Detailed(err)
	require.True(t, ok)
	assert.Equal(t, "insufficient stock: Tee (Small): requested 6, available 5; Mug: requested 3, available 1", msg)

	assert.Empty(t, f.catalog.setQuantityCalls)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.outbox.events)
}

func TestPlaceOrder_DuplicateLinesShareStock(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)

	_, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":3,"variant":{"id":"V1"}},{"id":"P1","quantity":3,"variant":{"mappingId":"M1"}}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "requested 3, available 2")
	assert.Equal(t, 5, f.catalog.quantity("M1"))
}

func TestPlaceOrder_MissingProducts(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)
	f.catalog.addProduct(domain.Product{ID: "P9", Title: "Draft", OriginalPrice: 1, Published: false})

	_, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":1},{"id":"P9","quantity":1},{"id":404,"quantity":1}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrMissingProducts)

	msg, ok := e.Detailed(err)
	require.True(t, ok)
	assert.Equal(t, "missing product IDs: P9, 404", msg)
}

func TestPlaceOrder_RejectsInput(t *testing.T) {
	testCases := []struct {
		name     string
		customer domain.Customer
		cart     string
		wantErr  error
	}{
		{
			name:     "missing name",
			customer: domain.Customer{Email: "a@example.com", Phone: "1", Address: "x"},
			cart:     `[{"id":"P1","quantity":1}]`,
			wantErr:  e.ErrMissingFields,
		},
		{
			name:     "blank address",
			customer: domain.Customer{Name: "A", Email: "a@example.com", Phone: "1", Address: "   "},
			cart:     `[{"id":"P1","quantity":1}]`,
			wantErr:  e.ErrMissingFields,
		},
		{
			name:     "bad email",
			customer: domain.Customer{Name: "A", Email: "not-an-email", Phone: "1", Address: "x"},
			cart:     `[{"id":"P1","quantity":1}]`,
			wantErr:  e.ErrInvalidEmail,
		},
		{
			name:     "email without domain dot",
			customer: domain.Customer{Name: "A", Email: "a@localhost", Phone: "1", Address: "x"},
			cart:     `[{"id":"P1","quantity":1}]`,
			wantErr:  e.ErrInvalidEmail,
		},
		{name: "malformed cart", customer: validCustomer, cart: `[{"id":`, wantErr: e.ErrMalformedCart},
		{name: "cart is an object", customer: validCustomer, cart: `{"id":"P1"}`, wantErr: e.ErrMalformedCart},
		{name: "empty cart", customer: validCustomer, cart: `[]`, wantErr: e.ErrEmptyCart},
		{name: "missing cart", customer: validCustomer, cart: "", wantErr: e.ErrEmptyCart},
		{name: "zero quantity", customer: validCustomer, cart: `[{"id":"P1","quantity":0}]`, wantErr: e.ErrInvalidQuantity},
		{name: "fractional quantity", customer: validCustomer, cart: `[{"id":"P1","quantity":1.5}]`, wantErr: e.ErrMalformedCart},
		{name: "item without id", customer: validCustomer, cart: `[{"quantity":1}]`, wantErr: e.ErrMalformedCart},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture()
			seedTee(f.catalog)

			_, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(tc.customer, tc.cart))
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 0, f.tx.calls)
		})
	}
}

func TestPlaceOrder_InvalidPriceRollsBackDeduction(t *testing.T) {
	f := newCheckoutFixture()
	f.catalog.addProduct(
		domain.Product{ID: "P1", Title: "Broken", OriginalPrice: -1, Published: true},
		domain.VariantMapping{ID: "M1", Variant: domain.VariantRef{ID: "V1"}, Quantity: 5, IsActive: true, IsDefault: true},
	)

	_, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer, `[{"id":"P1","quantity":2}]`))
	assert.ErrorIs(t, err, e.ErrInvalidPrice)
	assert.Equal(t, 5, f.catalog.quantity("M1"))
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrder_PersistFailureRollsBackDeduction(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)
	f.orders.createErr = errors.New("disk full")

	_, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":2,"variant":{"id":"V1"}}]`))
	require.Error(t, err)
	assert.Equal(t, 5, f.catalog.quantity("M1"))
	assert.Empty(t, f.outbox.events)
}

func TestPlaceOrder_NotificationFailureKeepsOrder(t *testing.T) {
	f := newCheckoutFixture()
	seedTee(f.catalog)
	f.outbox.createErr = errors.New("outbox unavailable")

	order, err := f.checkout.PlaceOrder(context.Background(), NewPlaceOrderReq(validCustomer,
		`[{"id":"P1","quantity":1,"variant":{"id":"V1"}}]`))
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Len(t, f.orders.orders, 1)
	assert.Equal(t, 4, f.catalog.quantity("M1"))
}

func TestValidateCustomer_NormalizesEmail(t *testing.T) {
	c, err := ValidateCustomer(domain.Customer{
		Name:    " Ada ",
		Email:   "Ada Lovelace <ada@example.com>",
		Phone:   "1",
		Address: "x",
		Note:    "  leave at door ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, "leave at door", c.Note)
}

func TestNewOrder_TotalIsExact(t *testing.T) {
	order := domain.NewOrder("o1", validCustomer, []domain.OrderItem{
		{ProductID: "a", Quantity: 3, Price: decimal.NewFromFloat(0.1)},
		{ProductID: "b", Quantity: 1, Price: decimal.NewFromFloat(0.2)},
	}, time.Now())

	assert.Equal(t, "0.50", order.Total.StringFixed(2))
}

func byteList(b []byte) string {
	out := make([]byte, 0, len(b)*4)
	for i, c := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendInt(out, int64(c), 10)
	}
	return string(out)
}
