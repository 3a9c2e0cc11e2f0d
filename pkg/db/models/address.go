package models

import "time"

// Address is a delivery address owned by a user. At most one address per
// user carries IsDefault.
type Address struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	ContactPerson string    `gorm:"column:contact_person;not null" json:"contact_person"`
	Gender        string    `gorm:"column:gender" json:"gender"`
	PhoneNumber   string    `gorm:"column:phone_number;not null;uniqueIndex" json:"phone_number"`
	Address       string    `gorm:"column:address;not null" json:"address"`
	HouseNumber   string    `gorm:"column:house_number" json:"house_number"`
	IsDefault     bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the legacy singular table name.
func (Address) TableName() string { return "address" }
