package address

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/afkahka/kfccfk/pkg/db/models"
)

func setupAddressTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS address (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  contact_person TEXT NOT NULL,
  gender TEXT,
  phone_number TEXT NOT NULL UNIQUE,
  address TEXT NOT NULL,
  house_number TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedAddress(t *testing.T, repo Repository, userID int64, phone string, isDefault bool) *models.Address {
	t.Helper()
	addr := &models.Address{
		UserID:        userID,
		ContactPerson: "小明",
		PhoneNumber:   phone,
		Address:       "人民路1号",
		IsDefault:     isDefault,
	}
	require.NoError(t, repo.Create(context.Background(), addr))
	return addr
}

func TestCreateDefaultClearsPreviousDefault(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)

	first := seedAddress(t, repo, 7, "13800000001", true)
	second := seedAddress(t, repo, 7, "13800000002", true)

	addrs, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, addrs, 2)

	defaults := 0
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	stored, err := repo.FindByID(context.Background(), first.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsDefault)
}

func TestDefaultExclusivityIsPerUser(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)

	mine := seedAddress(t, repo, 7, "13800000001", true)
	seedAddress(t, repo, 8, "13800000002", true)

	stored, err := repo.FindByID(context.Background(), mine.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsDefault)
}

func TestUpdatePromotesToDefault(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)

	first := seedAddress(t, repo, 7, "13800000001", true)
	second := seedAddress(t, repo, 7, "13800000002", false)

	second.IsDefault = true
	require.NoError(t, repo.Update(context.Background(), second))

	stored, err := repo.FindByID(context.Background(), first.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsDefault)
}

func TestDeleteScopedToOwner(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)

	addr := seedAddress(t, repo, 7, "13800000001", false)

	affected, err := repo.Delete(context.Background(), addr.ID, 8)
	require.NoError(t, err)
	assert.False(t, affected)

	affected, err = repo.Delete(context.Background(), addr.ID, 7)
	require.NoError(t, err)
	assert.True(t, affected)
}

func TestFindByIDWrongOwnerIsNil(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)

	addr := seedAddress(t, repo, 7, "13800000001", false)

	found, err := repo.FindByID(context.Background(), addr.ID, 8)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindByPhoneAcrossUsers(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)

	seedAddress(t, repo, 7, "13800000001", false)

	found, err := repo.FindByPhone(context.Background(), "13800000001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(7), found.UserID)

	found, err = repo.FindByPhone(context.Background(), "13800000002")
	require.NoError(t, err)
	assert.Nil(t, found)
}
