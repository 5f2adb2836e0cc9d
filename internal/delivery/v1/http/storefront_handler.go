package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const sitemapCacheControl = "public, max-age=3600"

// StorefrontHandler обслуживает sitemap, ленту блога и служебные операции админки.
type StorefrontHandler struct {
	sitemapUsecase usecase.SitemapUC
	blogUsecase    usecase.BlogUC
	orderUsecase   usecase.OrderUC
	logger         logger.Logger
}

func NewStorefrontHandler(
	sitemapUsecase usecase.SitemapUC,
	blogUsecase usecase.BlogUC,
	orderUsecase usecase.OrderUC,
	logger logger.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		sitemapUsecase: sitemapUsecase,
		blogUsecase:    blogUsecase,
		orderUsecase:   orderUsecase,
		logger:         logger,
	}
}

// sitemap
//
//	@Summary	sitemap.xml
//	@Tags		seo
//	@Produce	xml
//	@Success	200	{string}	string	"urlset"
//	@Router		/sitemap.xml [get]
func (s *StorefrontHandler) sitemap(w http.ResponseWriter, r *http.Request) {
	document, err := s.sitemapUsecase.Sitemap(r.Context())
	if err != nil {
		s.logger.Errorf(err, "build sitemap")
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", sitemapCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}

// publishSitemap
//
//	@Summary	Выгрузка sitemap.xml в объектное хранилище
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	PublishSitemapResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/admin/sitemap/publish [post]
func (s *StorefrontHandler) publishSitemap(w http.ResponseWriter, r *http.Request) {
	res, err := s.sitemapUsecase.Publish(r.Context())
	if err != nil {
		s.logger.Errorf(err, "publish sitemap")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, PublishSitemapResponse{
		Bucket: res.Bucket,
		Key:    res.Key,
		Size:   res.Size,
		ETag:   res.ETag,
	})
}

// listPosts
//
//	@Summary	Лента блога
//	@Tags		blog
//	@Produce	json
//	@Param		limit	query		int	false	"Максимум записей (по умолчанию 20, не больше 100)"
//	@Success	200		{object}	BlogPostsResponse
//	@Router		/api/blog [get]
func (s *StorefrontHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	posts, err := s.blogUsecase.ListPosts(r.Context(), usecase.NewListPostsReq(limit))
	if err != nil {
		s.logger.Errorf(err, "list blog posts")
		WriteError(w, err)
		return
	}

	resp := BlogPostsResponse{Posts: make([]BlogPostResponse, 0, len(posts))}
	for i := range posts {
		resp.Posts = append(resp.Posts, toBlogPostResponse(&posts[i]))
	}
	WriteSuccess(w, http.StatusOK, resp)
}

// cancelOrder
//
//	@Summary	Отмена заказа с возвратом остатков
//	@Tags		admin
//	@Produce	json
//	@Param		orderId	path		string	true	"ID заказа (UUID)"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/api/admin/orders/{orderId}/cancel [post]
func (s *StorefrontHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orderUsecase.CancelOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		s.logger.Warnf("cancel order %s: %v", chi.URLParam(r, "orderId"), err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}
