package model

import (
	"time"
)

// User is a person that can execute, control or approve work. Name is the display
// name used throughout requests (sender/receiver are stored by name).
type User struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;index" json:"name"`
	DivisionID int       `gorm:"index" json:"division_id"`
	IsValid    bool      `gorm:"not null" json:"is_valid"` // dismissed users stay for history
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
