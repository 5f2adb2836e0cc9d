package usecase

import (
	"math"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/shopspring/decimal"
)

// ValidPrice: цена задана, конечна и неотрицательна.
func ValidPrice(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) && *p >= 0
}

// VariantPrice возвращает переопределённую цену связки, иначе цену варианта, иначе 0.
// Заданная, но некорректная цена варианта — ошибка, а не ноль.
func VariantPrice(m *domain.VariantMapping, v *domain.Variant) (float64, error) {
	if m != nil && ValidPrice(m.PriceOverride) {
		return *m.PriceOverride, nil
	}

	if v != nil && v.Price != nil {
		if !ValidPrice(v.Price) {
			return 0, e.ErrInvalidPrice
		}
		return *v.Price, nil
	}

	return 0, nil
}

// ProductPrice возвращает цену со скидкой, если она корректна, иначе исходную цену.
func ProductPrice(p *domain.Product) (float64, error) {
	if ValidPrice(p.DiscountedPrice) {
		return *p.DiscountedPrice, nil
	}

	original := p.OriginalPrice
	if !ValidPrice(&original) {
		return 0, e.ErrInvalidPrice
	}

	return original, nil
}

// UnitPrice — цена единицы позиции: для позиции с вариантом VariantPrice связки, иначе цена товара.
// Вариант без своей цены и без переопределения стоит 0, цена товара на него не переносится.
func UnitPrice(p *domain.Product, m *domain.VariantMapping) (float64, error) {
	if m != nil {
		return VariantPrice(m, m.Variant.Variant)
	}
	return ProductPrice(p)
}

// ParsePrice проверяет цену из админки: не отрицательная и не точнее копеек.
func ParsePrice(d decimal.Decimal) (float64, error) {
	if d.IsNegative() {
		return 0, e.ErrInvalidPriceForm
	}

	if !d.Equal(d.Round(2)) {
		return 0, e.ErrPricePrecision
	}

	f, _ := d.Float64()
	return f, nil
}
