package enums

// RuleStatus gates whether a promotion rule participates in selection.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

// String implements fmt.Stringer.
func (r RuleStatus) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known RuleStatus.
func (r RuleStatus) IsValid() bool {
	return r == RuleStatusActive || r == RuleStatusInactive
}
