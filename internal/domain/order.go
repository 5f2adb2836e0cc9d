package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Customer — контактные данные покупателя.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Note    string
}

// VariantSnapshot — минимальный слепок варианта на момент покупки.
type VariantSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku,omitempty"`
}

// OrderItem — позиция заказа. Price фиксируется при оформлении и больше не пересчитывается.
type OrderItem struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Variant   *VariantSnapshot `json:"variant,omitempty"`
	MappingID string           `json:"mapping_id,omitempty"`
}

// Order — оформленный заказ. После создания меняется только статус.
type Order struct {
	ID        string
	Customer  Customer
	Items     []OrderItem
	Total     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}

// NewOrder собирает заказ и считает итог как сумму цена × количество.
func NewOrder(id string, customer Customer, items []OrderItem, createdAt time.Time) *Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return &Order{
		ID:        id,
		Customer:  customer,
		Items:     items,
		Total:     total,
		Status:    OrderStatusPending,
		CreatedAt: createdAt,
	}
}
