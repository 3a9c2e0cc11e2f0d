package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/afkahka/kfccfk/pkg/enums"
)

// Coupon is an administrator-managed coupon template.
type Coupon struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title           string           `gorm:"column:title;not null" json:"title"`
	DiscountAmount  decimal.Decimal  `gorm:"column:discount_amount;type:numeric(12,2);not null" json:"discount_amount"`
	ThresholdAmount *decimal.Decimal `gorm:"column:threshold_amount;type:numeric(12,2)" json:"threshold_amount"`
	ValidFrom       time.Time        `gorm:"column:valid_from;not null" json:"valid_from"`
	ValidTo         time.Time        `gorm:"column:valid_to;not null" json:"valid_to"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName keeps the legacy singular table name.
func (Coupon) TableName() string { return "coupon" }

// UserCoupon is a coupon template granted to one user. Status transitions
// unused→used happen in order settlement, outside the discount preview path.
type UserCoupon struct {
	ID         int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     int64              `gorm:"column:user_id;not null;index" json:"user_id"`
	CouponID   int64              `gorm:"column:coupon_id;not null;index" json:"coupon_id"`
	Status     enums.CouponStatus `gorm:"column:status;not null;default:unused" json:"status"`
	ObtainedAt time.Time          `gorm:"column:obtained_at;autoCreateTime" json:"obtained_at"`
}

// TableName keeps the legacy singular table name.
func (UserCoupon) TableName() string { return "user_coupon" }
