package model

import (
	"strconv"
	"time"
)

type Document struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Number     string `gorm:"type:varchar(50);not null;index" json:"number"`
	Name       string `gorm:"type:varchar(500);not null" json:"name"`
	DivisionID int    `gorm:"index" json:"division_id"`
}

// Work is a unit of work listed in a document.
type Work struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	DocumentID int       `gorm:"not null;index" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	Name       string    `gorm:"type:varchar(500);not null" json:"name"`
}

// Assignment links a work to the user executing it and holds the mutable dates.
// An assignment is open while FactDate is nil.
type Assignment struct {
	ID           int        `gorm:"primaryKey" json:"id"`
	WorkID       int        `gorm:"not null;index:idx_assignment_work_executor" json:"work_id"`
	ExecutorID   int        `gorm:"not null;index:idx_assignment_work_executor" json:"executor_id"`
	ControllerID *int       `gorm:"index" json:"controller_id"`
	ApproverID   *int       `gorm:"index" json:"approver_id"`
	PlanDate     *time.Time `gorm:"type:date" json:"plan_date"`
	Korrect1     *time.Time `gorm:"type:date" json:"korrect1"`
	Korrect2     *time.Time `gorm:"type:date" json:"korrect2"`
	Korrect3     *time.Time `gorm:"type:date" json:"korrect3"`
	FactDate     *time.Time `gorm:"type:date;index" json:"fact_date"`
}

// DocumentNumber renders the "<num>/<workId>" form used to reference a work item.
func DocumentNumber(docNumber string, workID int) string {
	return docNumber + "/" + strconv.Itoa(workID)
}
