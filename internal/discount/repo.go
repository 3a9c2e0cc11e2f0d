package discount

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/afkahka/kfccfk/pkg/db/models"
	"github.com/afkahka/kfccfk/pkg/enums"
)

// RuleRepository selects the promotion rule applicable to one level on one
// weekday.
type RuleRepository interface {
	// FindActiveRule returns the single winning rule for the level/weekday
	// pair, or nil when no active rule matches. Ties are broken by priority
	// ascending, then id ascending.
	FindActiveRule(ctx context.Context, levelType, weekday int) (*models.PromotionRule, error)
}

// CouponGrant pairs a user's coupon grant with its template.
type CouponGrant struct {
	Grant  models.UserCoupon
	Coupon models.Coupon
}

// CouponRepository reads coupon grants for preview evaluation.
type CouponRepository interface {
	// FindGrant returns the grant identified by grantID when it belongs to
	// userID, or nil otherwise. A grant whose template row is missing is
	// treated as not found.
	FindGrant(ctx context.Context, grantID, userID int64) (*CouponGrant, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) FindActiveRule(ctx context.Context, levelType, weekday int) (*models.PromotionRule, error) {
	var rule models.PromotionRule
	err := r.db.WithContext(ctx).
		Where("level_type = ? AND weekday = ? AND status = ?", levelType, weekday, enums.RuleStatusActive).
		Order("priority ASC, id ASC").
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) FindGrant(ctx context.Context, grantID, userID int64) (*CouponGrant, error) {
	var grant models.UserCoupon
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", grantID, userID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var coupon models.Coupon
	err = r.db.WithContext(ctx).
		Where("id = ?", grant.CouponID).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &CouponGrant{Grant: grant, Coupon: coupon}, nil
}
