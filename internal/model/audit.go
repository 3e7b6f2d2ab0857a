package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateRequest       = "CREATE_REQUEST"
	ActionUpdateRequest       = "UPDATE_REQUEST"
	ActionDeleteRequest       = "DELETE_REQUEST"
	ActionAcceptRequest       = "ACCEPT_REQUEST"
	ActionDeclineRequest      = "DECLINE_REQUEST"
	ActionWriteAssignmentDate = "WRITE_ASSIGNMENT_DATE"
)

// AuditLog tracks Who, What, and When for request workflow changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(255);index" json:"actor"` // empty for automated changes
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(100);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
