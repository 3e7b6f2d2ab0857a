package repository

import (
	"context"
	"time"

	"worktracker/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository interface {
	FindUserByName(ctx context.Context, name string) (*model.User, error)
	SetDate(ctx context.Context, workID, executorID int, column string, date time.Time) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// FindUserByName resolves a display name to a user, preferring valid users when names repeat.
func (r *assignmentRepository) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).
		Where("name = ?", name).
		Order("is_valid DESC, id ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetDate writes one date column on every assignment of the work executed by the user.
// column must come from model.AssignmentColumn.
func (r *assignmentRepository) SetDate(ctx context.Context, workID, executorID int, column string, date time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Assignment{}).
		Where("work_id = ? AND executor_id = ?", workID, executorID).
		Update(column, date)
	return res.RowsAffected, res.Error
}
