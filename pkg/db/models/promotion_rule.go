package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/pkg/enums"
)

// PromotionRule is a per-tier, per-weekday membership discount policy.
// Which of the optional fields must be set depends on Type; rows with
// missing required fields are skipped at computation time rather than
// rejected, so malformed reference data never breaks a preview.
type PromotionRule struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LevelType       int              `gorm:"column:level_type;not null;index:idx_rule_level_weekday" json:"level_type"`
	Weekday         int              `gorm:"column:weekday;not null;index:idx_rule_level_weekday" json:"weekday"`
	Status          enums.RuleStatus `gorm:"column:status;not null;default:active" json:"status"`
	Priority        int              `gorm:"column:priority;not null;default:100" json:"priority"`
	Type            enums.RuleType   `gorm:"column:type;not null" json:"type"`
	PercentOff      *int64           `gorm:"column:percent_off" json:"percent_off"`
	DiscountAmount  *decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2)" json:"discount_amount"`
	ThresholdAmount *decimal.Decimal `gorm:"column:threshold_amount;type:numeric(12,2)" json:"threshold_amount"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the legacy table name.
func (PromotionRule) TableName() string { return "member_right_rule" }
