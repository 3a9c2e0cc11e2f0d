package models

import "github.com/shopspring/decimal"

// MemberLevel is one row of the membership tier table. Growth ranges across
// levels are contiguous and non-overlapping; a nil GrowthValueMax marks the
// unbounded top tier.
type MemberLevel struct {
	ID               int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LevelType        int              `gorm:"column:level_type;not null;uniqueIndex" json:"level_type"`
	LevelName        string           `gorm:"column:level_name;not null" json:"level_name"`
	GrowthValueMin   int64            `gorm:"column:growth_value_min;not null" json:"growth_value_min"`
	GrowthValueMax   *int64           `gorm:"column:growth_value_max" json:"growth_value_max"`
	GrowthMultiplier *decimal.Decimal `gorm:"column:growth_multiplier;type:numeric(6,2)" json:"growth_multiplier"`
}

// TableName keeps the legacy singular table name.
func (MemberLevel) TableName() string { return "member_level" }
