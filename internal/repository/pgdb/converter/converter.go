package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/shopspring/decimal"
)

// ToProduct возвращает товар с голыми ссылками на связки в порядке variant_mapping_ids.
func ToProduct(m *ProductModel) domain.Product {
	refs := make([]domain.MappingRef, 0, len(m.VariantMappingIDs))
	for _, id := range m.VariantMappingIDs {
		refs = append(refs, domain.MappingRef{ID: id})
	}

	return domain.Product{
		ID:              m.ID,
		Slug:            m.Slug,
		Title:           m.Title,
		OriginalPrice:   m.OriginalPrice,
		DiscountedPrice: m.DiscountedPrice,
		Published:       m.Published,
		TotalStock:      m.TotalStock,
		Mappings:        refs,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func ToVariantMapping(m *VariantMappingModel) domain.VariantMapping {
	mapping := domain.VariantMapping{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Variant:       domain.VariantRef{ID: m.VariantID},
		Quantity:      m.Quantity,
		PriceOverride: m.PriceOverride,
		IsDefault:     m.IsDefault,
		IsActive:      m.IsActive,
	}

	if m.VariantName != nil {
		v := &domain.Variant{
			ID:    m.VariantID,
			Name:  *m.VariantName,
			Price: m.VariantPrice,
			SKU:   m.VariantSKU,
		}
		if m.VariantCategory != nil {
			v.Category = *m.VariantCategory
		}
		mapping.Variant.Variant = v
	}

	return mapping
}

func ToOrderModel(o *domain.Order) (*OrderModel, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}

	return &OrderModel{
		ID:        o.ID,
		Name:      o.Customer.Name,
		Email:     o.Customer.Email,
		Phone:     o.Customer.Phone,
		Address:   o.Customer.Address,
		Note:      o.Customer.Note,
		Items:     items,
		Total:     o.Total.StringFixed(2),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}, nil
}

func ToOrder(m *OrderModel) (*domain.Order, error) {
	var items []domain.OrderItem
	if err := json.Unmarshal(m.Items, &items); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(m.Total)
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		ID: m.ID,
		Customer: domain.Customer{
			Name:    m.Name,
			Email:   m.Email,
			Phone:   m.Phone,
			Address: m.Address,
			Note:    m.Note,
		},
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}, nil
}

func ToBlogPost(m *BlogPostModel) domain.BlogPost {
	return domain.BlogPost{
		ID:          m.ID,
		Slug:        m.Slug,
		Title:       m.Title,
		Excerpt:     m.Excerpt,
		Published:   m.Published,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToOutboxEventModel(e *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          e.ID,
		EventID:     e.EventID,
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Payload:     e.Payload,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		ProcessedAt: e.ProcessedAt,
	}
}

func ToOutboxEvent(m *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          m.ID,
		EventID:     m.EventID,
		EventType:   m.EventType,
		AggregateID: m.AggregateID,
		Payload:     m.Payload,
		Status:      usecase.OutboxStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		ProcessedAt: m.ProcessedAt,
	}
}

func ToOutboxEvents(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, ToOutboxEvent(m))
	}
	return out
}
