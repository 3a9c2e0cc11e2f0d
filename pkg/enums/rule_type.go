package enums

import "fmt"

// RuleType identifies how a promotion rule computes its discount.
type RuleType string

const (
	RuleTypePercentage   RuleType = "percentage"
	RuleTypeFixed        RuleType = "fixed"
	RuleTypeThresholdCut RuleType = "threshold_cut"
)

var validRuleTypes = []RuleType{
	RuleTypePercentage,
	RuleTypeFixed,
	RuleTypeThresholdCut,
}

// String implements fmt.Stringer.
func (r RuleType) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known RuleType.
func (r RuleType) IsValid() bool {
	for _, candidate := range validRuleTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRuleType converts raw input into a RuleType.
func ParseRuleType(value string) (RuleType, error) {
	for _, candidate := range validRuleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule type %q", value)
}
