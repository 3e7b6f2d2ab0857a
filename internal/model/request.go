package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus enum constants. PENDING is the only non-terminal state.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestDeclined = "DECLINED"
)

// RequestType enum constants; the value selects which assignment date an accepted request rewrites.
const (
	RequestTypeFact  = "fact"
	RequestTypeCorr1 = "corr1"
	RequestTypeCorr2 = "corr2"
	RequestTypeCorr3 = "corr3"

	CorrectionPrefix = "corr"
)

var requestDateColumns = map[string]string{
	RequestTypeFact:  "fact_date",
	RequestTypeCorr1: "korrect1",
	RequestTypeCorr2: "korrect2",
	RequestTypeCorr3: "korrect3",
}

// AssignmentColumn returns the assignments column written when a request of this type is accepted.
func AssignmentColumn(requestType string) (string, bool) {
	col, ok := requestDateColumns[requestType]
	return col, ok
}

func IsKnownRequestType(requestType string) bool {
	_, ok := requestDateColumns[requestType]
	return ok
}

func IsCorrection(requestType string) bool {
	return strings.HasPrefix(requestType, CorrectionPrefix)
}

// Request proposes a new fact or correction date for a work item and waits for the receiver.
// Executor/controller/plan/correction dates are copies taken at creation time.
type Request struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkDocumentNumber string     `gorm:"type:varchar(100);not null;index" json:"work_document_number"`
	DocumentName       string     `gorm:"type:varchar(500)" json:"document_name"`
	WorkName           string     `gorm:"type:varchar(500)" json:"work_name"`
	RequestType        string     `gorm:"type:varchar(10);not null" json:"request_type"`
	Sender             string     `gorm:"type:varchar(255);not null;index" json:"sender"`
	Receiver           string     `gorm:"type:varchar(255);not null;index" json:"receiver"`
	RequestDate        time.Time  `gorm:"not null" json:"request_date"`
	ProposedDate       *time.Time `gorm:"type:date" json:"proposed_date"`
	Note               string     `gorm:"type:text" json:"note"`
	Status             string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	IsDone             bool       `gorm:"not null;default:false" json:"is_done"`

	Executor   string     `gorm:"type:text" json:"executor"`
	Controller string     `gorm:"type:text" json:"controller"`
	PlanDate   *time.Time `gorm:"type:date" json:"plan_date"`
	Korrect1   *time.Time `gorm:"type:date" json:"korrect1"`
	Korrect2   *time.Time `gorm:"type:date" json:"korrect2"`
	Korrect3   *time.Time `gorm:"type:date" json:"korrect3"`

	ResolvedBy string     `gorm:"type:varchar(255)" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Request) IsPending() bool {
	return r.Status == RequestPending
}
