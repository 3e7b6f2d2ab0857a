package model

import (
	"time"
)

// Highlight classes attached to work items that have a pending request from the viewer.
const (
	HighlightFact       = "info"
	HighlightCorrection = "warning"
)

// WorkItem is the read-only view of an assignment joined with its work, document and people.
// Raw rows coming from the store carry a single executor/controller; aggregated items carry
// comma-joined lists.
type WorkItem struct {
	DocumentNumber string     `json:"document_number"`
	DocumentName   string     `json:"document_name"`
	WorkName       string     `json:"work_name"`
	Executor       string     `json:"executor"`
	Controller     string     `json:"controller"`
	Approver       string     `json:"approver"`
	PlanDate       *time.Time `json:"plan_date"`
	Korrect1       *time.Time `json:"korrect1"`
	Korrect2       *time.Time `json:"korrect2"`
	Korrect3       *time.Time `json:"korrect3"`
	FactDate       *time.Time `json:"fact_date"`

	HighlightClass      string     `gorm:"-" json:"highlight_class,omitempty"`
	PendingRequestID    string     `gorm:"-" json:"pending_request_id,omitempty"`
	PendingRequestType  string     `gorm:"-" json:"pending_request_type,omitempty"`
	PendingProposedDate *time.Time `gorm:"-" json:"pending_proposed_date,omitempty"`
	PendingNote         string     `gorm:"-" json:"pending_note,omitempty"`
	PendingReceiver     string     `gorm:"-" json:"pending_receiver,omitempty"`
}

// EffectiveDate is the latest correction date that is set, falling back to the plan date.
func (w WorkItem) EffectiveDate() *time.Time {
	switch {
	case w.Korrect3 != nil:
		return w.Korrect3
	case w.Korrect2 != nil:
		return w.Korrect2
	case w.Korrect1 != nil:
		return w.Korrect1
	default:
		return w.PlanDate
	}
}

// AggregationKey identifies one logical work item. Rows sharing a key differ only in
// executor/controller and are merged.
type AggregationKey struct {
	DocumentName   string
	WorkName       string
	Approver       string
	PlanDate       dayKey
	Korrect1       dayKey
	Korrect2       dayKey
	Korrect3       dayKey
	FactDate       dayKey
	DocumentNumber string
}

// dayKey is a comparable form of an optional date.
type dayKey struct {
	set   bool
	year  int
	month time.Month
	day   int
}

func toDayKey(t *time.Time) dayKey {
	if t == nil {
		return dayKey{}
	}
	u := t.UTC()
	return dayKey{set: true, year: u.Year(), month: u.Month(), day: u.Day()}
}

func (w WorkItem) Key() AggregationKey {
	return AggregationKey{
		DocumentName:   w.DocumentName,
		WorkName:       w.WorkName,
		Approver:       w.Approver,
		PlanDate:       toDayKey(w.PlanDate),
		Korrect1:       toDayKey(w.Korrect1),
		Korrect2:       toDayKey(w.Korrect2),
		Korrect3:       toDayKey(w.Korrect3),
		FactDate:       toDayKey(w.FactDate),
		DocumentNumber: w.DocumentNumber,
	}
}
