package domain

import "time"

// Product описывает товар каталога.
type Product struct {
	ID              string
	Slug            string
	Title           string
	OriginalPrice   float64
	DiscountedPrice *float64
	Published       bool
	TotalStock      int // агрегат по связкам, кэшируется в таблице products
	Mappings        []MappingRef
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// MappingRef — ссылка товара на связку с вариантом. Mapping == nil, если запись не подгружена
// (висячая ссылка или запрос без раскрытия связей).
type MappingRef struct {
	ID      string
	Mapping *VariantMapping
}

// MappingIDs возвращает идентификаторы всех ссылок в исходном порядке.
func (p *Product) MappingIDs() []string {
	ids := make([]string, 0, len(p.Mappings))
	for _, ref := range p.Mappings {
		ids = append(ids, ref.ID)
	}
	return ids
}

// DefaultMapping возвращает подгруженную связку с флагом IsDefault.
func (p *Product) DefaultMapping() *VariantMapping {
	for _, ref := range p.Mappings {
		if ref.Mapping != nil && ref.Mapping.IsDefault {
			return ref.Mapping
		}
	}
	return nil
}

// LastModified возвращает время последнего изменения: UpdatedAt, иначе CreatedAt.
func (p *Product) LastModified() time.Time {
	return lastModified(p.UpdatedAt, p.CreatedAt)
}

// ProductPatch — частичное обновление товара из админки. nil-поле не меняется.
type ProductPatch struct {
	Title                *string
	OriginalPrice        *float64
	DiscountedPrice      *float64
	ClearDiscountedPrice bool
	Published            *bool
}

func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.OriginalPrice == nil && p.DiscountedPrice == nil &&
		!p.ClearDiscountedPrice && p.Published == nil
}

// Apply применяет изменения к товару.
func (p ProductPatch) Apply(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.OriginalPrice != nil {
		product.OriginalPrice = *p.OriginalPrice
	}
	if p.ClearDiscountedPrice {
		product.DiscountedPrice = nil
	} else if p.DiscountedPrice != nil {
		v := *p.DiscountedPrice
		product.DiscountedPrice = &v
	}
	if p.Published != nil {
		product.Published = *p.Published
	}
}

func lastModified(updatedAt *time.Time, createdAt time.Time) time.Time {
	if updatedAt != nil && !updatedAt.IsZero() {
		return *updatedAt
	}
	return createdAt
}
