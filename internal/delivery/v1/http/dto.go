package http

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID              string     `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	OriginalPrice   float64    `json:"originalPrice"`
	DiscountedPrice *float64   `json:"discountedPrice,omitempty"`
	Published       bool       `json:"published"`
	TotalStock      int        `json:"totalStock"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

type VariantResponse struct {
	MappingID string   `json:"mappingId"`
	VariantID string   `json:"variantId"`
	Name      string   `json:"name"`
	SKU       string   `json:"sku,omitempty"`
	Category  string   `json:"category,omitempty"`
	Price     *float64 `json:"price"`
	Quantity  int      `json:"quantity"`
	IsDefault bool     `json:"isDefault"`
}

type VariantsResponse struct {
	Error    string            `json:"error,omitempty"`
	Variants []VariantResponse `json:"variants"`
}

type PriceQuoteRequest struct {
	ProductID any `json:"productId"`
	VariantID any `json:"variantId,omitempty"`
}

type PriceQuoteResponse struct {
	OK      bool             `json:"ok"`
	Error   string           `json:"error,omitempty"`
	Product *ProductResponse `json:"product,omitempty"`
	Price   *float64         `json:"price,omitempty"`
	Variant *VariantResponse `json:"variant,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type BlogPostResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type BlogPostsResponse struct {
	Posts []BlogPostResponse `json:"posts"`
}

// UpdateProductRequest — правка товара из админки. Цены принимаются числом или строкой.
type UpdateProductRequest struct {
	Title                *string          `json:"title,omitempty"`
	OriginalPrice        *decimal.Decimal `json:"originalPrice,omitempty"`
	DiscountedPrice      *decimal.Decimal `json:"discountedPrice,omitempty"`
	ClearDiscountedPrice bool             `json:"clearDiscountedPrice,omitempty"`
	Published            *bool            `json:"published,omitempty"`
}

type OrderItemResponse struct {
	ProductID string                  `json:"productId"`
	MappingID string                  `json:"mappingId,omitempty"`
	Quantity  int                     `json:"quantity"`
	Price     string                  `json:"price"`
	Variant   *domain.VariantSnapshot `json:"variant,omitempty"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Total     string              `json:"total"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"createdAt"`
}

type PublishSitemapResponse struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	ETag   string `json:"etag"`
}

func toProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: p.DiscountedPrice,
		Published:       p.Published,
		TotalStock:      p.TotalStock,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toVariantResponse(v *usecase.VariantInfo) *VariantResponse {
	return &VariantResponse{
		MappingID: v.MappingID,
		VariantID: v.VariantID,
		Name:      v.Name,
		SKU:       v.SKU,
		Category:  v.Category,
		Price:     v.Price,
		Quantity:  v.Quantity,
		IsDefault: v.IsDefault,
	}
}

func toBlogPostResponse(p *domain.BlogPost) BlogPostResponse {
	return BlogPostResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
	}
}

func toOrderResponse(o *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			MappingID: it.MappingID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
			Variant:   it.Variant,
		})
	}

	return &OrderResponse{
		ID:        o.ID,
		Status:    string(o.Status),
		Total:     o.Total.StringFixed(2),
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}
