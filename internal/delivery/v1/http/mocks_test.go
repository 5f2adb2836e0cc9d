package http

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

type stubCheckoutUC struct {
	req   *usecase.PlaceOrderReq
	order *domain.Order
	err   error
}

func (s *stubCheckoutUC) PlaceOrder(_ context.Context, req *usecase.PlaceOrderReq) (*domain.Order, error) {
	s.req = req
	return s.order, s.err
}

type stubCatalogUC struct {
	products []domain.Product
	product  *domain.Product
	variants []usecase.VariantInfo
	quote    *usecase.PriceQuote
	err      error

	gotID    any
	gotQuote *usecase.PriceQuoteReq
	gotPatch domain.ProductPatch
}

func (s *stubCatalogUC) ListProducts(context.Context, *usecase.ListProductsReq) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogUC) GetProduct(_ context.Context, productID any) (*domain.Product, error) {
	s.gotID = productID
	return s.product, s.err
}

func (s *stubCatalogUC) GetVariants(_ context.Context, productID any) ([]usecase.VariantInfo, error) {
	s.gotID = productID
	return s.variants, s.err
}

func (s *stubCatalogUC) QuotePrice(_ context.Context, req *usecase.PriceQuoteReq) (*usecase.PriceQuote, error) {
	s.gotQuote = req
	return s.quote, s.err
}

func (s *stubCatalogUC) UpdateProduct(_ context.Context, productID any, patch domain.ProductPatch) (*domain.Product, error) {
	s.gotID = productID
	s.gotPatch = patch
	return s.product, s.err
}

type stubSitemapUC struct {
	document []byte
	res      *usecase.PublishSitemapRes
	err      error
}

func (s *stubSitemapUC) Sitemap(context.Context) ([]byte, error) { return s.document, s.err }

func (s *stubSitemapUC) Publish(context.Context) (*usecase.PublishSitemapRes, error) {
	return s.res, s.err
}

type stubBlogUC struct {
	posts []domain.BlogPost
	req   *usecase.ListPostsReq
	err   error
}

func (s *stubBlogUC) ListPosts(_ context.Context, req *usecase.ListPostsReq) ([]domain.BlogPost, error) {
	s.req = req
	return s.posts, s.err
}

type stubOrderUC struct {
	order *domain.Order
	err   error
}

func (s *stubOrderUC) CancelOrder(context.Context, string) (*domain.Order, error) {
	return s.order, s.err
}
