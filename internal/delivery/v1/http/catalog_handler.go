package http

import (
	"errors"
	"net/http"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// listProducts
//
//	@Summary	Список опубликованных товаров
//	@Tags		products
//	@Produce	json
//	@Param		limit	query		int	false	"Максимум записей (по умолчанию 100, не больше 1000)"
//	@Success	200		{object}	ProductsResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/products [get]
func (c *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	products, err := c.catalogUsecase.ListProducts(r.Context(), usecase.NewListProductsReq(limit))
	if err != nil {
		c.logger.Errorf(err, "list products")
		WriteError(w, err)
		return
	}

	resp := ProductsResponse{Products: make([]ProductResponse, 0, len(products))}
	for i := range products {
		resp.Products = append(resp.Products, *toProductResponse(&products[i]))
	}
	WriteSuccess(w, http.StatusOK, resp)
}

// getProduct
//
//	@Summary	Опубликованный товар
//	@Tags		products
//	@Produce	json
//	@Param		productId	path		string	true	"ID товара"
//	@Success	200			{object}	ProductResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/products/{productId} [get]
func (c *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.catalogUsecase.GetProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// getVariants
//
//	@Summary		Варианты товара
//	@Description	Неизвестный товар — 200 с пустым списком и полем error
//	@Tags			products
//	@Produce		json
//	@Param			productId	path		string	true	"ID товара"
//	@Success		200			{object}	VariantsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/products/{productId}/variants [get]
func (c *CatalogHandler) getVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := c.catalogUsecase.GetVariants(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			WriteSuccess(w, http.StatusOK, VariantsResponse{
				Error:    e.ErrProductNotFound.Error(),
				Variants: []VariantResponse{},
			})
			return
		}

		if code, _ := ToHTTPResponse(err); code == http.StatusInternalServerError {
			c.logger.Errorf(err, "get variants")
		}
		WriteError(w, err)
		return
	}

	resp := VariantsResponse{Variants: make([]VariantResponse, 0, len(variants))}
	for i := range variants {
		resp.Variants = append(resp.Variants, *toVariantResponse(&variants[i]))
	}
	WriteSuccess(w, http.StatusOK, resp)
}

// quotePrice
//
//	@Summary	Цена товара или варианта
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		request	body		PriceQuoteRequest	true	"Товар и необязательный вариант"
//	@Success	200		{object}	PriceQuoteResponse
//	@Failure	400		{object}	PriceQuoteResponse
//	@Failure	404		{object}	PriceQuoteResponse
//	@Failure	409		{object}	PriceQuoteResponse
//	@Failure	500		{object}	PriceQuoteResponse
//	@Router		/api/checkout/price [post]
func (c *CatalogHandler) quotePrice(w http.ResponseWriter, r *http.Request) {
	var req PriceQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writePriceError(w, err)
		return
	}

	quote, err := c.catalogUsecase.QuotePrice(r.Context(), usecase.NewPriceQuoteReq(req.ProductID, req.VariantID))
	if err != nil {
		if code, _ := ToHTTPResponse(err); code == http.StatusInternalServerError {
			c.logger.Errorf(err, "price quote")
		}
		writePriceError(w, err)
		return
	}

	resp := PriceQuoteResponse{
		OK:      true,
		Product: toProductResponse(quote.Product),
		Price:   &quote.Price,
	}
	if quote.Variant != nil {
		resp.Variant = toVariantResponse(quote.Variant)
	}
	WriteSuccess(w, http.StatusOK, resp)
}

func writePriceError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, PriceQuoteResponse{OK: false, Error: msg})
}

// updateProduct
//
//	@Summary	Правка товара из админки
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		productId	path		string					true	"ID товара"
//	@Param		request		body		UpdateProductRequest	true	"Изменяемые поля"
//	@Success	200			{object}	ProductResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/admin/products/{productId} [patch]
func (c *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	patch, err := toProductPatch(&req)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := c.catalogUsecase.UpdateProduct(r.Context(), chi.URLParam(r, "productId"), patch)
	if err != nil {
		c.logger.Warnf("update product %s: %v", chi.URLParam(r, "productId"), err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

func toProductPatch(req *UpdateProductRequest) (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Title:                req.Title,
		ClearDiscountedPrice: req.ClearDiscountedPrice,
		Published:            req.Published,
	}

	if req.OriginalPrice != nil {
		price, err := usecase.ParsePrice(*req.OriginalPrice)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.OriginalPrice = &price
	}

	if req.DiscountedPrice != nil {
		price, err := usecase.ParsePrice(*req.DiscountedPrice)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.DiscountedPrice = &price
	}

	return patch, nil
}
