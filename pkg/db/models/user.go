package models

import "time"

// User is a loyalty program account. Coins and GrowthValue are mutated only
// through the membership accrual service; LevelType is derived from
// GrowthValue and must never be written independently of it.
type User struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Telephone   string    `gorm:"column:telephone;not null;uniqueIndex" json:"telephone"`
	Coins       int64     `gorm:"column:coins;not null;default:0" json:"coins"`
	GrowthValue int64     `gorm:"column:growth_value;not null;default:0" json:"growth_value"`
	LevelType   *int      `gorm:"column:level_type" json:"level_type"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the legacy singular table name.
func (User) TableName() string { return "user" }
