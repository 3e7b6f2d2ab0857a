package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"worktracker/internal/model"

	"gorm.io/gorm"
)

// WorkItemRepository reads the joined assignment/work/document/user view for one division.
// A work item belongs to the division of its executor.
type WorkItemRepository interface {
	OpenRowsByDivision(ctx context.Context, divisionID int) ([]model.WorkItem, error)
	DivisionName(ctx context.Context, divisionID int) (string, bool, error)
	ExecutorNames(ctx context.Context, divisionID int) ([]string, error)
	ApproverNames(ctx context.Context, divisionID int) ([]string, error)
	AllowedDivisions(ctx context.Context, userID int) ([]int, error)
}

type workItemRepository struct {
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) WorkItemRepository {
	return &workItemRepository{db: db}
}

type workItemRow struct {
	DocNumber    string
	WorkID       int
	DocumentName string
	WorkName     string
	Executor     string
	Controller   string
	Approver     string
	PlanDate     *time.Time
	Korrect1     *time.Time
	Korrect2     *time.Time
	Korrect3     *time.Time
	FactDate     *time.Time
}

// OpenRowsByDivision returns one row per open assignment (fact date not set), not yet merged.
func (r *workItemRepository) OpenRowsByDivision(ctx context.Context, divisionID int) ([]model.WorkItem, error) {
	var rows []workItemRow
	err := GetDB(ctx, r.db).Table("assignments AS a").
		Select(`d.number AS doc_number, w.id AS work_id, d.name AS document_name, w.name AS work_name,
			e.name AS executor, COALESCE(c.name, '') AS controller, COALESCE(ap.name, '') AS approver,
			a.plan_date, a.korrect1, a.korrect2, a.korrect3, a.fact_date`).
		Joins("JOIN works w ON w.id = a.work_id").
		Joins("JOIN documents d ON d.id = w.document_id").
		Joins("JOIN users e ON e.id = a.executor_id").
		Joins("LEFT JOIN users c ON c.id = a.controller_id").
		Joins("LEFT JOIN users ap ON ap.id = a.approver_id").
		Where("a.fact_date IS NULL AND e.division_id = ?", divisionID).
		Order("d.number, w.id, a.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]model.WorkItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, model.WorkItem{
			DocumentNumber: model.DocumentNumber(row.DocNumber, row.WorkID),
			DocumentName:   row.DocumentName,
			WorkName:       row.WorkName,
			Executor:       row.Executor,
			Controller:     row.Controller,
			Approver:       row.Approver,
			PlanDate:       row.PlanDate,
			Korrect1:       row.Korrect1,
			Korrect2:       row.Korrect2,
			Korrect3:       row.Korrect3,
			FactDate:       row.FactDate,
		})
	}
	return items, nil
}

func (r *workItemRepository) DivisionName(ctx context.Context, divisionID int) (string, bool, error) {
	var division model.Division
	err := GetDB(ctx, r.db).First(&division, "id = ?", divisionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return division.Name, true, nil
}

// ExecutorNames lists distinct valid user names; divisionID 0 means every division.
func (r *workItemRepository) ExecutorNames(ctx context.Context, divisionID int) ([]string, error) {
	var names []string
	query := GetDB(ctx, r.db).Model(&model.User{}).Distinct("name").Where("is_valid = ?", true)
	if divisionID != 0 {
		query = query.Where("division_id = ?", divisionID)
	}
	if err := query.Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ApproverNames lists distinct approvers of open assignments; divisionID 0 means every division.
func (r *workItemRepository) ApproverNames(ctx context.Context, divisionID int) ([]string, error) {
	var names []string
	query := GetDB(ctx, r.db).Table("assignments AS a").
		Distinct("ap.name").
		Joins("JOIN users ap ON ap.id = a.approver_id").
		Joins("JOIN users e ON e.id = a.executor_id").
		Where("a.fact_date IS NULL")
	if divisionID != 0 {
		query = query.Where("e.division_id = ?", divisionID)
	}
	if err := query.Pluck("ap.name", &names).Error; err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// AllowedDivisions is the union of explicit grants and the user's own division, ascending.
func (r *workItemRepository) AllowedDivisions(ctx context.Context, userID int) ([]int, error) {
	db := GetDB(ctx, r.db)

	var granted []int
	if err := db.Model(&model.DivisionAccess{}).Where("user_id = ?", userID).Pluck("division_id", &granted).Error; err != nil {
		return nil, err
	}

	var user model.User
	err := db.First(&user, "id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && user.DivisionID != 0 {
		granted = append(granted, user.DivisionID)
	}

	seen := make(map[int]struct{}, len(granted))
	ids := make([]int, 0, len(granted))
	for _, id := range granted {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
