package e

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrMissingFields    = fmt.Errorf("missing required fields")
	ErrInvalidEmail     = fmt.Errorf("invalid email address")
	ErrMalformedCart    = fmt.Errorf("malformed cart items")
	ErrEmptyCart        = fmt.Errorf("cart is empty")
	ErrInvalidQuantity  = fmt.Errorf("quantity must be a positive integer")
	ErrInvalidID        = fmt.Errorf("invalid identifier")
	ErrMissingProducts  = fmt.Errorf("missing product IDs")
	ErrInvalidPriceForm = fmt.Errorf("invalid price")
	ErrPricePrecision   = fmt.Errorf("price must have at most 2 decimal places")
	ErrNothingToUpdate  = fmt.Errorf("nothing to update")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrVariantNotFound = fmt.Errorf("variant not found")
	ErrOrderNotFound   = fmt.Errorf("order not found")

	// 405 Method Not Allowed
	ErrMethodNotAllowed = fmt.Errorf("method not allowed")

	// 409 Conflict
	ErrInsufficientStock     = fmt.Errorf("insufficient stock")
	ErrStockConflict         = fmt.Errorf("stock changed concurrently, please retry")
	ErrProductUnavailable    = fmt.Errorf("product is not available")
	ErrVariantUnavailable    = fmt.Errorf("variant is not available")
	ErrInvalidPrice          = fmt.Errorf("price is not a valid non-negative number")
	ErrOrderAlreadyCancelled = fmt.Errorf("order is already cancelled")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Shortfall описывает одну позицию корзины, для которой не хватает остатка.
type Shortfall struct {
	Label     string
	Requested int
	Available int
	Reason    string
}

func (s Shortfall) String() string {
	if s.Reason != "" {
		return fmt.Sprintf("%s: %s", s.Label, s.Reason)
	}
	return fmt.Sprintf("%s: requested %d, available %d", s.Label, s.Requested, s.Available)
}

// StockShortfallError агрегирует все нехватки остатков одного запроса в одно сообщение.
type StockShortfallError struct {
	Lines []Shortfall
}

func (s *StockShortfallError) Error() string {
	parts := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		parts = append(parts, l.String())
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock.Error(), strings.Join(parts, "; "))
}

func (s *StockShortfallError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// MissingProductsError перечисляет идентификаторы товаров, отсутствующих среди опубликованных.
type MissingProductsError struct {
	IDs []string
}

func (m *MissingProductsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingProducts.Error(), strings.Join(m.IDs, ", "))
}

func (m *MissingProductsError) Is(target error) bool {
	return target == ErrMissingProducts
}

// Detailed возвращает развёрнутое сообщение для ошибок, которые его несут,
// и false для всех остальных.
func Detailed(err error) (string, bool) {
	var shortfall *StockShortfallError
	if errors.As(err, &shortfall) {
		return shortfall.Error(), true
	}

	var missing *MissingProductsError
	if errors.As(err, &missing) {
		return missing.Error(), true
	}

	return "", false
}
