package usecase

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// CHECKOUT

// PlaceOrderReq — данные формы оформления заказа. CartItems — сырой JSON корзины.
type PlaceOrderReq struct {
	Customer  domain.Customer
	CartItems string
}

// CATALOG

// ListProductsReq — запрос списка опубликованных товаров.
type ListProductsReq struct {
	Limit int
}

// VariantInfo — вариант товара для витрины.
type VariantInfo struct {
	MappingID string
	VariantID string
	Name      string
	SKU       string
	Category  string
	Price     *float64 // nil, если цена в каталоге некорректна
	Quantity  int
	IsDefault bool
}

// PriceQuoteReq — запрос цены товара или конкретного варианта.
type PriceQuoteReq struct {
	ProductID any
	VariantID any
}

// PriceQuote — рассчитанная цена товара или варианта.
type PriceQuote struct {
	Product *domain.Product
	Price   float64
	Variant *VariantInfo
}

// BLOG

// ListPostsReq — запрос ленты блога.
type ListPostsReq struct {
	Limit int
}

// SITEMAP

// StaticRoute — статическая страница витрины в sitemap.
type StaticRoute struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// TrailingSlashMode — режим нормализации завершающего слэша в URL sitemap.
type TrailingSlashMode string

const (
	TrailingSlashPreserve TrailingSlashMode = "preserve"
	TrailingSlashAlways   TrailingSlashMode = "always"
	TrailingSlashNever    TrailingSlashMode = "never"
)

// SitemapSettings — адрес витрины и список статических маршрутов.
type SitemapSettings struct {
	BaseURL       string
	BasePath      string
	TrailingSlash TrailingSlashMode
	StaticRoutes  []StaticRoute
}

// PublishSitemapRes — результат выгрузки sitemap в объектное хранилище.
type PublishSitemapRes struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// INFRASTRUCTURE

// WriteRawMessageReq — готовое сообщение для брокера.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewPlaceOrderReq(customer domain.Customer, cartItems string) *PlaceOrderReq {
	return &PlaceOrderReq{
		Customer:  customer,
		CartItems: cartItems,
	}
}

func NewListProductsReq(limit int) *ListProductsReq {
	return &ListProductsReq{Limit: limit}
}

func NewListPostsReq(limit int) *ListPostsReq {
	return &ListPostsReq{Limit: limit}
}

func NewPriceQuoteReq(productID, variantID any) *PriceQuoteReq {
	return &PriceQuoteReq{
		ProductID: productID,
		VariantID: variantID,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewPublishSitemapRes(bucket, key string, size int64, etag string) *PublishSitemapRes {
	return &PublishSitemapRes{
		Bucket: bucket,
		Key:    key,
		Size:   size,
		ETag:   etag,
	}
}

// NewVariantInfo собирает описание варианта из связки. Цена nil, если её нельзя посчитать.
func NewVariantInfo(product *domain.Product, m *domain.VariantMapping) *VariantInfo {
	info := &VariantInfo{
		MappingID: m.ID,
		VariantID: m.Variant.ID,
		Quantity:  m.Quantity,
		IsDefault: m.IsDefault,
	}

	if v := m.Variant.Variant; v != nil {
		info.Name = v.Name
		info.Category = v.Category
		if v.SKU != nil {
			info.SKU = *v.SKU
		}
	}

	if price, err := UnitPrice(product, m); err == nil {
		info.Price = &price
	}

	return info
}

// DefaultStaticRoutes — статические страницы витрины.
func DefaultStaticRoutes() []StaticRoute {
	return []StaticRoute{
		{Path: "/", ChangeFreq: "daily", Priority: 1.0},
		{Path: "/products", ChangeFreq: "daily", Priority: 0.8},
		{Path: "/blog", ChangeFreq: "weekly", Priority: 0.6},
		{Path: "/about", ChangeFreq: "monthly", Priority: 0.5},
		{Path: "/contact", ChangeFreq: "monthly", Priority: 0.5},
	}
}

// clock подменяется в тестах.
type clock func() time.Time
