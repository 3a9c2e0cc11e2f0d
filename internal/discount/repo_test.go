package discount

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/afkahka/kfccfk/pkg/db/models"
	"github.com/afkahka/kfccfk/pkg/enums"
)

func setupDiscountTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	rules := `
CREATE TABLE IF NOT EXISTS member_right_rule (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  level_type INTEGER NOT NULL,
  weekday INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  priority INTEGER NOT NULL DEFAULT 100,
  type TEXT NOT NULL,
  percent_off INTEGER,
  discount_amount NUMERIC,
  threshold_amount NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`
	coupons := `
CREATE TABLE IF NOT EXISTS coupon (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  discount_amount NUMERIC NOT NULL,
  threshold_amount NUMERIC,
  valid_from DATETIME NOT NULL,
  valid_to DATETIME NOT NULL,
  created_at DATETIME
);`
	grants := `
CREATE TABLE IF NOT EXISTS user_coupon (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  coupon_id INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'unused',
  obtained_at DATETIME
);`
	require.NoError(t, db.Exec(rules).Error)
	require.NoError(t, db.Exec(coupons).Error)
	require.NoError(t, db.Exec(grants).Error)
	return db
}

func seedRule(t *testing.T, db *gorm.DB, rule *models.PromotionRule) *models.PromotionRule {
	t.Helper()
	require.NoError(t, db.Create(rule).Error)
	return rule
}

func TestFindActiveRulePicksLowestPriorityThenID(t *testing.T) {
	db := setupDiscountTestDB(t)
	repo := NewRuleRepository(db)

	seedRule(t, db, &models.PromotionRule{
		LevelType: 2, Weekday: 3, Status: enums.RuleStatusActive,
		Priority: 20, Type: enums.RuleTypeFixed, DiscountAmount: decimalPtr("3.00"),
	})
	winner := seedRule(t, db, &models.PromotionRule{
		LevelType: 2, Weekday: 3, Status: enums.RuleStatusActive,
		Priority: 10, Type: enums.RuleTypePercentage, PercentOff: int64Ptr(85),
	})
	// Same priority as the winner but a higher id, so it loses the tie.
	seedRule(t, db, &models.PromotionRule{
		LevelType: 2, Weekday: 3, Status: enums.RuleStatusActive,
		Priority: 10, Type: enums.RuleTypeFixed, DiscountAmount: decimalPtr("9.00"),
	})

	rule, err := repo.FindActiveRule(context.Background(), 2, 3)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, winner.ID, rule.ID)
	assert.Equal(t, enums.RuleTypePercentage, rule.Type)
}

func TestFindActiveRuleIgnoresInactiveAndOtherDays(t *testing.T) {
	db := setupDiscountTestDB(t)
	repo := NewRuleRepository(db)

	seedRule(t, db, &models.PromotionRule{
		LevelType: 2, Weekday: 3, Status: enums.RuleStatusInactive,
		Priority: 1, Type: enums.RuleTypePercentage, PercentOff: int64Ptr(50),
	})
	seedRule(t, db, &models.PromotionRule{
		LevelType: 2, Weekday: 4, Status: enums.RuleStatusActive,
		Priority: 1, Type: enums.RuleTypePercentage, PercentOff: int64Ptr(50),
	})
	seedRule(t, db, &models.PromotionRule{
		LevelType: 3, Weekday: 3, Status: enums.RuleStatusActive,
		Priority: 1, Type: enums.RuleTypePercentage, PercentOff: int64Ptr(50),
	})

	rule, err := repo.FindActiveRule(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestFindGrantScopedToUser(t *testing.T) {
	db := setupDiscountTestDB(t)
	repo := NewCouponRepository(db)

	coupon := &models.Coupon{
		Title:          "十元代金券",
		DiscountAmount: *decimalPtr("10.00"),
		ValidFrom:      time.Now().Add(-time.Hour),
		ValidTo:        time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(coupon).Error)

	grant := &models.UserCoupon{UserID: 7, CouponID: coupon.ID, Status: enums.CouponStatusUnused}
	require.NoError(t, db.Create(grant).Error)

	found, err := repo.FindGrant(context.Background(), grant.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, coupon.ID, found.Coupon.ID)
	assert.Equal(t, "十元代金券", found.Coupon.Title)

	// Another user's id never resolves the grant.
	found, err = repo.FindGrant(context.Background(), grant.ID, 8)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindGrantMissingTemplate(t *testing.T) {
	db := setupDiscountTestDB(t)
	repo := NewCouponRepository(db)

	grant := &models.UserCoupon{UserID: 7, CouponID: 9999, Status: enums.CouponStatusUnused}
	require.NoError(t, db.Create(grant).Error)

	found, err := repo.FindGrant(context.Background(), grant.ID, 7)
	require.NoError(t, err)
	assert.Nil(t, found)
}
