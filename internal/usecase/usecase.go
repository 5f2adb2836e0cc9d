package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CheckoutUC interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error)
}

type CatalogUC interface {
	ListProducts(ctx context.Context, req *ListProductsReq) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID any) (*domain.Product, error)
	GetVariants(ctx context.Context, productID any) ([]VariantInfo, error)
	QuotePrice(ctx context.Context, req *PriceQuoteReq) (*PriceQuote, error)
	UpdateProduct(ctx context.Context, productID any, patch domain.ProductPatch) (*domain.Product, error)
}

type SitemapUC interface {
	Sitemap(ctx context.Context) ([]byte, error)
	Publish(ctx context.Context) (*PublishSitemapRes, error)
}

type BlogUC interface {
	ListPosts(ctx context.Context, req *ListPostsReq) ([]domain.BlogPost, error)
}

type OrderUC interface {
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
