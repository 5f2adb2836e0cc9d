package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/pkg/e"
)

const maxJSONBody = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

var (
	badRequestErrs = []error{
		e.ErrStatusBadRequest,
		e.ErrMissingFields,
		e.ErrInvalidEmail,
		e.ErrMalformedCart,
		e.ErrEmptyCart,
		e.ErrInvalidQuantity,
		e.ErrInvalidID,
		e.ErrMissingProducts,
		e.ErrInvalidPriceForm,
		e.ErrPricePrecision,
		e.ErrNothingToUpdate,
	}
	notFoundErrs = []error{
		e.ErrProductNotFound,
		e.ErrVariantNotFound,
		e.ErrOrderNotFound,
	}
	conflictErrs = []error{
		e.ErrInsufficientStock,
		e.ErrStockConflict,
		e.ErrProductUnavailable,
		e.ErrVariantUnavailable,
		e.ErrInvalidPrice,
		e.ErrOrderAlreadyCancelled,
	}
)

// ToHTTPResponse сопоставляет ошибку со статусом и сообщением для клиента.
// Сообщение начинается с текста sentinel-ошибки, префиксы операций отбрасываются.
func ToHTTPResponse(err error) (int, string) {
	if errors.Is(err, e.ErrMethodNotAllowed) {
		return http.StatusMethodNotAllowed, e.ErrMethodNotAllowed.Error()
	}

	for _, group := range []struct {
		code int
		errs []error
	}{
		{http.StatusBadRequest, badRequestErrs},
		{http.StatusNotFound, notFoundErrs},
		{http.StatusConflict, conflictErrs},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.code, publicMessage(err, target)
			}
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

func publicMessage(err, target error) string {
	if msg, ok := e.Detailed(err); ok {
		return msg
	}

	msg := err.Error()
	if i := strings.Index(msg, target.Error()); i >= 0 {
		return msg[i:]
	}
	return target.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса; числа сохраняются как json.Number, чтобы ID не теряли точность.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// queryLimit возвращает limit из строки запроса; 0 — значение по умолчанию.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, e.Wrap("limit", e.ErrStatusBadRequest)
	}

	return limit, nil
}
