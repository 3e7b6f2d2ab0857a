package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"worktracker/internal/database"
	"worktracker/internal/logger"
	"worktracker/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

var quietLog = logger.Discard()

// fakeSource counts store round trips per division.
type fakeSource struct {
	mu        sync.Mutex
	rows      map[int][]model.WorkItem
	names     map[int]string
	executors map[int][]string
	approvers map[int][]string
	calls     map[string]int
	err       error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rows:      map[int][]model.WorkItem{},
		names:     map[int]string{},
		executors: map[int][]string{},
		approvers: map[int][]string{},
		calls:     map[string]int{},
	}
}

func (f *fakeSource) count(kind string, id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fmt.Sprintf("%s:%d", kind, id)]
}

func (f *fakeSource) hit(kind string, id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[fmt.Sprintf("%s:%d", kind, id)]++
}

func (f *fakeSource) OpenRowsByDivision(_ context.Context, divisionID int) ([]model.WorkItem, error) {
	f.hit("rows", divisionID)
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.WorkItem(nil), f.rows[divisionID]...), nil
}

func (f *fakeSource) DivisionName(_ context.Context, divisionID int) (string, bool, error) {
	name, ok := f.names[divisionID]
	return name, ok, f.err
}

func (f *fakeSource) ExecutorNames(_ context.Context, divisionID int) ([]string, error) {
	f.hit("executors", divisionID)
	return f.executors[divisionID], f.err
}

func (f *fakeSource) ApproverNames(_ context.Context, divisionID int) ([]string, error) {
	f.hit("approvers", divisionID)
	return f.approvers[divisionID], f.err
}

// fakePending serves pending requests from memory in insertion order.
type fakePending struct {
	requests []model.Request
	calls    int
}

func (f *fakePending) ListPendingByDocuments(_ context.Context, docs []string) ([]model.Request, error) {
	f.calls++
	want := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		want[d] = struct{}{}
	}
	var out []model.Request
	for _, r := range f.requests {
		if _, ok := want[r.WorkDocumentNumber]; ok && r.Status == model.RequestPending && !r.IsDone {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAccess struct {
	divisions map[int][]int
}

func (f fakeAccess) AllowedDivisions(_ context.Context, userID int) ([]int, error) {
	return f.divisions[userID], nil
}

// recordingInvalidator remembers invalidated divisions.
type recordingInvalidator struct {
	divisions []int
	reasons   []string
}

func (r *recordingInvalidator) Invalidate(divisionID int, reason string) {
	r.divisions = append(r.divisions, divisionID)
	r.reasons = append(r.reasons, reason)
}

type recordingNotifier struct {
	events []RequestEvent
}

func (r *recordingNotifier) Publish(e RequestEvent) {
	r.events = append(r.events, e)
}

func rawRow(doc, executor, controller string) model.WorkItem {
	return model.WorkItem{
		DocumentNumber: doc,
		DocumentName:   "Order",
		WorkName:       "Draft",
		Approver:       "Olga",
		PlanDate:       day(2024, 1, 1),
		Executor:       executor,
		Controller:     controller,
	}
}

// seedDivision5 mirrors the repository fixture:
//
//	users: 1 Ivan (div 5), 2 Petr (div 5), 3 Olga (div 9), 4 Anna (div 5)
//	document 100 "12" with work 7 "Draft" executed by Ivan and Petr
func seedDivision5(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]model.Division{{ID: 5, Name: "Design"}, {ID: 9, Name: "Management"}}).Error)
	require.NoError(t, db.Create(&[]model.User{
		{ID: 1, Name: "Ivan", DivisionID: 5, IsValid: true},
		{ID: 2, Name: "Petr", DivisionID: 5, IsValid: true},
		{ID: 3, Name: "Olga", DivisionID: 9, IsValid: true},
		{ID: 4, Name: "Anna", DivisionID: 5, IsValid: true},
	}).Error)
	require.NoError(t, db.Create(&model.Document{ID: 100, Number: "12", Name: "Order", DivisionID: 5}).Error)
	require.NoError(t, db.Create(&model.Work{ID: 7, DocumentID: 100, Name: "Draft"}).Error)
	require.NoError(t, db.Create(&[]model.Assignment{
		{ID: 1, WorkID: 7, ExecutorID: 1, ControllerID: intPtr(4), ApproverID: intPtr(3), PlanDate: day(2024, 1, 1)},
		{ID: 2, WorkID: 7, ExecutorID: 2, ControllerID: intPtr(4), ApproverID: intPtr(3), PlanDate: day(2024, 1, 1)},
	}).Error)
}
