package membership

import (
	"context"

	"gorm.io/gorm"

	"github.com/afkahka/kfccfk/pkg/db/models"
)

// AccountRepository handles user balance persistence.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// IncrementBalances applies both deltas as a single UPDATE so concurrent
	// settlements for the same user cannot lose increments. It reports
	// whether a row was touched.
	IncrementBalances(ctx context.Context, id int64, coinsDelta, growthDelta int64) (bool, error)
	SetLevel(ctx context.Context, id int64, levelType int) (bool, error)
}

// LevelRepository reads the membership tier reference table.
type LevelRepository interface {
	ListLevels(ctx context.Context) ([]models.MemberLevel, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns an account repository bound to the provided database.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *accountRepository) IncrementBalances(ctx context.Context, id int64, coinsDelta, growthDelta int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"coins":        gorm.Expr("coins + ?", coinsDelta),
			"growth_value": gorm.Expr("growth_value + ?", growthDelta),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *accountRepository) SetLevel(ctx context.Context, id int64, levelType int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("level_type", levelType)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type levelRepository struct {
	db *gorm.DB
}

// NewLevelRepository returns a level repository bound to the provided database.
func NewLevelRepository(db *gorm.DB) LevelRepository {
	return &levelRepository{db: db}
}

func (r *levelRepository) ListLevels(ctx context.Context) ([]models.MemberLevel, error) {
	var levels []models.MemberLevel
	if err := r.db.WithContext(ctx).
		Order("level_type ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}
