package address

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/afkahka/kfccfk/pkg/db/models"
)

// Repository handles delivery address persistence.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Address, error)
	FindByID(ctx context.Context, id, userID int64) (*models.Address, error)
	// FindByPhone looks a row up by phone number across all users; the
	// column carries a unique index.
	FindByPhone(ctx context.Context, phone string) (*models.Address, error)
	// Create inserts the address; when it is flagged default the previous
	// default of the same user is cleared in the same transaction.
	Create(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, addr *models.Address) error
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an address repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]models.Address, error) {
	var addrs []models.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *repository) FindByID(ctx context.Context, id, userID int64) (*models.Address, error) {
	var addr models.Address
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addr, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Address, error) {
	var addr models.Address
	if err := r.db.WithContext(ctx).
		Where("phone_number = ?", phone).
		First(&addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addr, nil
}

func (r *repository) Create(ctx context.Context, addr *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := clearDefault(tx, addr.UserID); err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
}

func (r *repository) Update(ctx context.Context, addr *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := clearDefault(tx, addr.UserID); err != nil {
				return err
			}
		}
		return tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", addr.ID, addr.UserID).
			Updates(map[string]any{
				"contact_person": addr.ContactPerson,
				"gender":         addr.Gender,
				"phone_number":   addr.PhoneNumber,
				"address":        addr.Address,
				"house_number":   addr.HouseNumber,
				"is_default":     addr.IsDefault,
			}).Error
	})
}

func (r *repository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Address{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func clearDefault(tx *gorm.DB, userID int64) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
