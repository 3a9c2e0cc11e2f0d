package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/api/responses"
	"github.com/afkahka/kfccfk/api/validators"
	membershipsvc "github.com/afkahka/kfccfk/internal/membership"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
	"github.com/afkahka/kfccfk/pkg/logger"
)

type orderPaidRequest struct {
	UserID int64  `json:"user_id" validate:"required,min=1"`
	Amount string `json:"amount" validate:"required"`
}

// OrderPaid settles a paid order: it credits coins and growth and reports
// the resulting balance and tier. The order id in the path is the
// idempotency anchor; the handler itself only needs the payer and amount.
func OrderPaid(svc *membershipsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
			return
		}

		if _, err := validators.ParseID(r, "orderID"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal number"))
			return
		}

		result, err := svc.OnOrderPaid(r.Context(), payload.UserID, amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
