package model

// Division is an organizational unit that owns users and, through them, work items.
type Division struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

// DivisionAccess grants a user read access to another division's work items.
type DivisionAccess struct {
	UserID     int `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	DivisionID int `gorm:"primaryKey;autoIncrement:false" json:"division_id"`
}
