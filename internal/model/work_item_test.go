package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestWorkItem_EffectiveDate(t *testing.T) {
	tests := []struct {
		name string
		item WorkItem
		want *time.Time
	}{
		{"plan only", WorkItem{PlanDate: day(2024, 1, 1)}, day(2024, 1, 1)},
		{"korrect1 over plan", WorkItem{PlanDate: day(2024, 1, 1), Korrect1: day(2024, 1, 10)}, day(2024, 1, 10)},
		{"korrect3 wins even if korrect2 missing", WorkItem{Korrect1: day(2024, 1, 10), Korrect3: day(2024, 3, 1)}, day(2024, 3, 1)},
		{"nothing set", WorkItem{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.EffectiveDate())
		})
	}
}

func TestWorkItem_KeyIgnoresPeopleLists(t *testing.T) {
	a := WorkItem{DocumentNumber: "12/7", DocumentName: "Order", WorkName: "Draft", Approver: "Olga", PlanDate: day(2024, 1, 1), Executor: "Ivan"}
	b := a
	b.Executor = "Petr"
	b.Controller = "Anna"
	assert.Equal(t, a.Key(), b.Key())

	c := a
	c.PlanDate = day(2024, 1, 2)
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestWorkItem_KeyNoSeparatorCollisions(t *testing.T) {
	a := WorkItem{DocumentName: "A|B", WorkName: "C"}
	b := WorkItem{DocumentName: "A", WorkName: "B|C"}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestAssignmentColumn(t *testing.T) {
	col, ok := AssignmentColumn(RequestTypeFact)
	assert.True(t, ok)
	assert.Equal(t, "fact_date", col)

	col, ok = AssignmentColumn(RequestTypeCorr2)
	assert.True(t, ok)
	assert.Equal(t, "korrect2", col)

	_, ok = AssignmentColumn("plan")
	assert.False(t, ok)

	assert.True(t, IsCorrection(RequestTypeCorr3))
	assert.False(t, IsCorrection(RequestTypeFact))
}

func TestDocumentNumber(t *testing.T) {
	assert.Equal(t, "15-A/42", DocumentNumber("15-A", 42))
}
