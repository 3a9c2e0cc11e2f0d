package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/api/responses"
	"github.com/afkahka/kfccfk/api/validators"
	discountsvc "github.com/afkahka/kfccfk/internal/discount"
	userssvc "github.com/afkahka/kfccfk/internal/users"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
	"github.com/afkahka/kfccfk/pkg/logger"
)

type previewDiscountRequest struct {
	UserID       int64  `json:"user_id" validate:"required,min=1"`
	LevelType    int    `json:"level_type" validate:"omitempty,min=1"`
	Subtotal     string `json:"subtotal" validate:"required"`
	UserCouponID *int64 `json:"user_coupon_id" validate:"omitempty,min=1"`
}

// PreviewDiscount computes the checkout discount breakdown. When the caller
// omits level_type the user's stored tier is used.
func PreviewDiscount(svc *discountsvc.Service, users *userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload previewDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal, err := decimal.NewFromString(payload.Subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "subtotal must be a decimal number"))
			return
		}

		levelType := payload.LevelType
		if levelType == 0 {
			levelType, err = resolveUserLevel(r, users, payload.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		preview, err := svc.PreviewDiscount(r.Context(), discountsvc.PreviewInput{
			UserID:       payload.UserID,
			LevelType:    levelType,
			Subtotal:     subtotal,
			UserCouponID: payload.UserCouponID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// PreviewDiscountQuery is the GET variant for storefront pages that cannot
// send a body: /discounts/preview?user_id=&subtotal=&level_type=&user_coupon_id=.
func PreviewDiscountQuery(svc *discountsvc.Service, users *userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		userID, err := parseQueryID(r, "user_id", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal, err := validators.ParseQueryDecimal(r, "subtotal", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		levelType, err := validators.ParseQueryInt(r, "level_type", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if levelType == 0 {
			levelType, err = resolveUserLevel(r, users, userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := discountsvc.PreviewInput{
			UserID:    userID,
			LevelType: levelType,
			Subtotal:  subtotal,
		}
		if grantID, err := parseQueryID(r, "user_coupon_id", false); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if grantID > 0 {
			input.UserCouponID = &grantID
		}

		preview, err := svc.PreviewDiscount(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

func resolveUserLevel(r *http.Request, users *userssvc.Service, userID int64) (int, error) {
	if users == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable")
	}
	profile, err := users.GetProfile(r.Context(), userID)
	if err != nil {
		return 0, err
	}
	if profile.User.LevelType == nil {
		return 1, nil
	}
	return *profile.User.LevelType, nil
}

func parseQueryID(r *http.Request, key string, required bool) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		if required {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
		}
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
