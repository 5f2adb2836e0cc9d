package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const maxCheckoutForm = 1 << 20

type CheckoutHandler struct {
	checkoutUsecase usecase.CheckoutUC
	successPath     string
	logger          logger.Logger
}

func NewCheckoutHandler(checkoutUsecase usecase.CheckoutUC, successPath string, logger logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUsecase: checkoutUsecase,
		successPath:     successPath,
		logger:          logger,
	}
}

// placeOrder
//
//	@Summary		Оформление заказа
//	@Description	Принимает форму оформления заказа и JSON корзины, списывает остатки и создаёт заказ
//	@Tags			checkout
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			name		formData	string	true	"Имя"
//	@Param			email		formData	string	true	"Email"
//	@Param			phone		formData	string	true	"Телефон"
//	@Param			address		formData	string	true	"Адрес"
//	@Param			note		formData	string	false	"Комментарий"
//	@Param			cartItems	formData	string	true	"Корзина (JSON)"
//	@Success		302
//	@Failure		400	{object}	ErrorResponse
//	@Failure		405	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/checkout [post]
func (c *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteError(w, e.ErrMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutForm)
	if err := r.ParseForm(); err != nil {
		c.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.Wrap(err.Error(), e.ErrStatusBadRequest))
		return
	}

	customer := domain.Customer{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Address: r.PostFormValue("address"),
		Note:    r.PostFormValue("note"),
	}

	order, err := c.checkoutUsecase.PlaceOrder(r.Context(), usecase.NewPlaceOrderReq(customer, r.PostFormValue("cartItems")))
	if err != nil {
		code, _ := ToHTTPResponse(err)
		if code == http.StatusInternalServerError {
			c.logger.Errorf(err, "checkout failed")
		} else {
			c.logger.Warnf("%d checkout rejected: %s", code, err.Error())
		}
		WriteError(w, err)
		return
	}

	c.logger.Debugf("order %s placed, redirecting to %s", order.ID, c.successPath)
	http.Redirect(w, r, c.successPath, http.StatusFound)
}
