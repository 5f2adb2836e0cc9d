package usecase

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/ident"
)

// ResolveMapping находит связку товара по запрошенному варианту.
//
// Клиенты присылают в поле варианта то ID связки, то ID самого варианта, поэтому
// связка подходит, если с requestedVariantID совпадает её собственный ID или ID её варианта,
// либо если её ID совпадает с явно переданным requestedMappingID. Неподгруженные ссылки пропускаются.
func ResolveMapping(refs []domain.MappingRef, requestedVariantID, requestedMappingID any) (*domain.VariantMapping, bool) {
	wantVariant := ident.Normalize(requestedVariantID)
	wantMapping := ident.Normalize(requestedMappingID)
	if wantVariant == "" && wantMapping == "" {
		return nil, false
	}

	for _, ref := range refs {
		m := ref.Mapping
		if m == nil {
			continue
		}

		mappingID := ident.Normalize(m.ID)
		if wantVariant != "" && (mappingID == wantVariant || ident.Normalize(m.Variant.ID) == wantVariant) {
			return m, true
		}
		if wantMapping != "" && mappingID == wantMapping {
			return m, true
		}
	}

	return nil, false
}

// requestedVariant раскладывает выбор варианта из корзины на два ключа поиска.
func requestedVariant(v *domain.CartVariant) (variantID, mappingID any) {
	if v == nil {
		return nil, nil
	}
	return v.ID, v.MappingID
}

// isVariantScoped сообщает, указан ли в позиции корзины конкретный вариант.
func isVariantScoped(item domain.CartItem) bool {
	return hasVariantRequest(requestedVariant(item.Variant))
}

func hasVariantRequest(variantID, mappingID any) bool {
	return ident.Normalize(variantID) != "" || ident.Normalize(mappingID) != ""
}
