package models

// MemberRightCategory groups rights for display.
type MemberRightCategory struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Category int    `gorm:"column:category;not null;uniqueIndex" json:"category"`
	Name     string `gorm:"column:name;not null" json:"name"`
}

// TableName keeps the legacy table name.
func (MemberRightCategory) TableName() string { return "member_right_category" }

// MemberRight is a single membership benefit description.
type MemberRight struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExternalID     string `gorm:"column:external_id;not null;uniqueIndex" json:"external_id"`
	Category       int    `gorm:"column:category;not null;index" json:"category"`
	Title          string `gorm:"column:title;not null" json:"title"`
	Description    string `gorm:"column:description" json:"description"`
	IconURL        string `gorm:"column:icon_url" json:"icon_url"`
	ShowInMainPage bool   `gorm:"column:show_in_main_page;not null;default:false" json:"show_in_main_page"`
}

// TableName keeps the legacy table name.
func (MemberRight) TableName() string { return "member_right" }

// MemberLevelRight links a right to a membership level. ShowInMainPage, when
// set, overrides the right's own flag for that level.
type MemberLevelRight struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LevelType       int    `gorm:"column:level_type;not null;index" json:"level_type"`
	RightExternalID string `gorm:"column:right_external_id;not null;index" json:"right_external_id"`
	ShowInMainPage  *bool  `gorm:"column:show_in_main_page" json:"show_in_main_page"`
}

// TableName keeps the legacy table name.
func (MemberLevelRight) TableName() string { return "member_level_right" }
