package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/pkg/db/models"
	"github.com/afkahka/kfccfk/pkg/enums"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
	"github.com/afkahka/kfccfk/pkg/metrics"
)

// PreviewInput carries everything the preview needs. UserCouponID is the
// grant id (the user's own coupon row), not the template id.
type PreviewInput struct {
	UserID       int64
	LevelType    int
	Subtotal     decimal.Decimal
	UserCouponID *int64
}

// AppliedRule identifies the promotion rule that matched, even when its
// benefit came out to zero.
type AppliedRule struct {
	ID   int64          `json:"id"`
	Type enums.RuleType `json:"type"`
}

// CouponDetail identifies the coupon grant that contributed CouponDiscount.
// CouponID is the grant id the caller passed in.
type CouponDetail struct {
	CouponID       int64           `json:"coupon_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// Preview is the computed breakdown for one checkout. All amounts carry two
// decimal places. Payable is always Subtotal - TotalDiscount. AppliedRule
// and CouponDetail are null when no rule matched or no coupon was usable.
type Preview struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	RightDiscount  decimal.Decimal `json:"rightDiscount"`
	RightText      string          `json:"rightText"`
	AppliedRule    *AppliedRule    `json:"appliedRule"`
	CouponDiscount decimal.Decimal `json:"couponDiscount"`
	CouponDetail   *CouponDetail   `json:"couponDetail"`
	TotalDiscount  decimal.Decimal `json:"totalDiscount"`
	Payable        decimal.Decimal `json:"payable"`
}

type Service struct {
	rules   RuleRepository
	coupons CouponRepository
	metrics *metrics.LoyaltyMetrics
	now     func() time.Time
}

type ServiceParams struct {
	Rules   RuleRepository
	Coupons CouponRepository
	Metrics *metrics.LoyaltyMetrics
	Now     func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Rules == nil {
		return nil, fmt.Errorf("discount.NewService: rules repository is required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("discount.NewService: coupons repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		rules:   params.Rules,
		coupons: params.Coupons,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// PreviewDiscount computes the member-right and coupon benefit for a checkout
// without writing anything. Calling it repeatedly with the same input at the
// same instant yields the same result.
func (s *Service) PreviewDiscount(ctx context.Context, input PreviewInput) (*Preview, error) {
	if input.Subtotal.IsNegative() {
		s.metrics.IncPreview("invalid")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative")
	}
	if input.LevelType < 1 {
		s.metrics.IncPreview("invalid")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "levelType must be a positive tier ordinal")
	}

	now := s.now()
	weekday := int(now.Weekday())

	rule, err := s.rules.FindActiveRule(ctx, input.LevelType, weekday)
	if err != nil {
		s.metrics.IncPreview("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion rule")
	}
	benefit := evaluateRule(rule, input.Subtotal)
	rightDiscount := benefit.Discount.Round(2)
	if rightDiscount.IsNegative() {
		rightDiscount = decimal.Zero
	}
	var applied *AppliedRule
	if rule != nil {
		applied = &AppliedRule{ID: rule.ID, Type: rule.Type}
	}

	couponDiscount := decimal.Zero
	var couponDetail *CouponDetail
	if input.UserCouponID != nil {
		grant, err := s.coupons.FindGrant(ctx, *input.UserCouponID, input.UserID)
		if err != nil {
			s.metrics.IncPreview("error")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon grant")
		}
		var usable bool
		couponDiscount, usable = couponBenefit(grant, input.Subtotal, now)
		if usable {
			couponDetail = &CouponDetail{
				CouponID:       *input.UserCouponID,
				DiscountAmount: couponDiscount.Round(2),
			}
		}
	}

	totalDiscount := rightDiscount.Add(couponDiscount)
	if totalDiscount.GreaterThan(input.Subtotal) {
		totalDiscount = input.Subtotal
	}
	totalDiscount = totalDiscount.Round(2)

	s.metrics.IncPreview("ok")
	return &Preview{
		Subtotal:       input.Subtotal.Round(2),
		RightDiscount:  rightDiscount,
		RightText:      benefit.Label,
		AppliedRule:    applied,
		CouponDiscount: couponDiscount.Round(2),
		CouponDetail:   couponDetail,
		TotalDiscount:  totalDiscount,
		Payable:        input.Subtotal.Round(2).Sub(totalDiscount),
	}, nil
}

// couponBenefit returns the grant's face value and whether it is usable for
// this subtotal at this instant. An unusable coupon contributes zero and
// never fails the preview.
func couponBenefit(grant *CouponGrant, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, bool) {
	if grant == nil {
		return decimal.Zero, false
	}
	if grant.Grant.Status != enums.CouponStatusUnused {
		return decimal.Zero, false
	}
	if now.Before(grant.Coupon.ValidFrom) || now.After(grant.Coupon.ValidTo) {
		return decimal.Zero, false
	}
	if grant.Coupon.ThresholdAmount != nil && subtotal.LessThan(*grant.Coupon.ThresholdAmount) {
		return decimal.Zero, false
	}
	return grant.Coupon.DiscountAmount, true
}

// ActiveRuleFor exposes the winning rule for display contexts such as the
// member rights page.
func (s *Service) ActiveRuleFor(ctx context.Context, levelType int) (*models.PromotionRule, error) {
	if levelType < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "levelType must be a positive tier ordinal")
	}
	rule, err := s.rules.FindActiveRule(ctx, levelType, int(s.now().Weekday()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion rule")
	}
	return rule, nil
}
