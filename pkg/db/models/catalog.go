package models

import "github.com/shopspring/decimal"

// Category is a product category.
type Category struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
}

// TableName keeps the legacy singular table name.
func (Category) TableName() string { return "category" }

// Product is a sellable item. ParentID references the owning category.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ParentID    int64           `gorm:"column:parent_id;not null;index" json:"parent_id"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	ImageURL    string          `gorm:"column:image_url" json:"image_url"`
}

// TableName keeps the legacy table name (the shop started with coffee only).
func (Product) TableName() string { return "coffee" }
