package discount

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/pkg/db/models"
	"github.com/afkahka/kfccfk/pkg/enums"
)

var (
	hundred = decimal.NewFromInt(100)
	ten     = decimal.NewFromInt(10)
)

// ruleBenefit is what one promotion rule yields against a given subtotal.
type ruleBenefit struct {
	Discount decimal.Decimal
	Label    string
}

// evaluateRule computes the benefit of a single rule. A rule whose condition
// is not met, or whose configuration is incomplete, yields a zero benefit
// rather than an error: the preview must stay usable even when operators
// misconfigure a row.
func evaluateRule(rule *models.PromotionRule, subtotal decimal.Decimal) ruleBenefit {
	if rule == nil {
		return ruleBenefit{Discount: decimal.Zero}
	}

	switch rule.Type {
	case enums.RuleTypePercentage:
		// percent_off is the fraction of the subtotal still paid, in percent:
		// 85 means the member pays 85%, i.e. 15% off. Zero is treated as
		// unset, not as a free order.
		if rule.PercentOff == nil || *rule.PercentOff <= 0 || *rule.PercentOff > 100 {
			return ruleBenefit{Discount: decimal.Zero}
		}
		paid := decimal.NewFromInt(*rule.PercentOff)
		discount := subtotal.Mul(hundred.Sub(paid)).Div(hundred)
		return ruleBenefit{
			Discount: discount,
			Label:    fmt.Sprintf("会员日%s折", paid.Div(ten).StringFixed(1)),
		}

	case enums.RuleTypeFixed:
		if rule.DiscountAmount == nil {
			return ruleBenefit{Discount: decimal.Zero}
		}
		return ruleBenefit{
			Discount: *rule.DiscountAmount,
			Label:    fmt.Sprintf("立减￥%s", rule.DiscountAmount.StringFixed(2)),
		}

	case enums.RuleTypeThresholdCut:
		if rule.DiscountAmount == nil || rule.ThresholdAmount == nil {
			return ruleBenefit{Discount: decimal.Zero}
		}
		if subtotal.LessThan(*rule.ThresholdAmount) {
			return ruleBenefit{Discount: decimal.Zero}
		}
		return ruleBenefit{
			Discount: *rule.DiscountAmount,
			Label: fmt.Sprintf("满￥%s减￥%s",
				rule.ThresholdAmount.StringFixed(2),
				rule.DiscountAmount.StringFixed(2)),
		}
	}

	return ruleBenefit{Discount: decimal.Zero}
}
