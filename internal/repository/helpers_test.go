package repository_test

import (
	"fmt"
	"testing"
	"time"

	"worktracker/internal/database"
	"worktracker/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

// seedDivision5 creates division 5 with two executors sharing one work and a closed assignment.
//
//	users: 1 Ivan (div 5), 2 Petr (div 5), 3 Olga (div 9, approver), 4 Anna (div 5, controller), 5 Gone (div 5, invalid)
//	document 100 "12" / work 7 "Draft"
func seedDivision5(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]model.Division{{ID: 5, Name: "Design"}, {ID: 9, Name: "Management"}}).Error)
	require.NoError(t, db.Create(&[]model.User{
		{ID: 1, Name: "Ivan", DivisionID: 5, IsValid: true},
		{ID: 2, Name: "Petr", DivisionID: 5, IsValid: true},
		{ID: 3, Name: "Olga", DivisionID: 9, IsValid: true},
		{ID: 4, Name: "Anna", DivisionID: 5, IsValid: true},
		{ID: 5, Name: "Gone", DivisionID: 5, IsValid: false},
	}).Error)
	require.NoError(t, db.Create(&model.Document{ID: 100, Number: "12", Name: "Order", DivisionID: 5}).Error)
	require.NoError(t, db.Create(&[]model.Work{
		{ID: 7, DocumentID: 100, Name: "Draft"},
		{ID: 8, DocumentID: 100, Name: "Review"},
	}).Error)
	require.NoError(t, db.Create(&[]model.Assignment{
		{ID: 1, WorkID: 7, ExecutorID: 1, ControllerID: intPtr(4), ApproverID: intPtr(3), PlanDate: day(2024, 1, 1)},
		{ID: 2, WorkID: 7, ExecutorID: 2, ControllerID: intPtr(4), ApproverID: intPtr(3), PlanDate: day(2024, 1, 1)},
		{ID: 3, WorkID: 8, ExecutorID: 1, ApproverID: intPtr(3), PlanDate: day(2024, 2, 1), FactDate: day(2024, 2, 2)},
	}).Error)
}
