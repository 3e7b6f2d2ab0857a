package repository

import (
	"context"

	"worktracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentChunk bounds the IN list of a single pending-request lookup.
const documentChunk = 500

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	ListByDocument(ctx context.Context, documentNumber string) ([]model.Request, error)
	ListPendingByDocuments(ctx context.Context, documentNumbers []string) ([]model.Request, error)
	ListPendingByReceiver(ctx context.Context, receiver string) ([]model.Request, error)
	Update(ctx context.Context, req *model.Request) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByDocument returns every request for a document number, oldest first.
func (r *requestRepository) ListByDocument(ctx context.Context, documentNumber string) ([]model.Request, error) {
	var requests []model.Request
	err := GetDB(ctx, r.db).
		Where("work_document_number = ?", documentNumber).
		Order("request_date ASC, created_at ASC").
		Find(&requests).Error
	return requests, err
}

// ListPendingByDocuments returns unresolved requests for the given document numbers.
// Within one document the order is the same as ListByDocument.
func (r *requestRepository) ListPendingByDocuments(ctx context.Context, documentNumbers []string) ([]model.Request, error) {
	result := make([]model.Request, 0)
	for start := 0; start < len(documentNumbers); start += documentChunk {
		end := min(start+documentChunk, len(documentNumbers))

		var chunk []model.Request
		err := GetDB(ctx, r.db).
			Where("work_document_number IN ? AND status = ? AND is_done = ?", documentNumbers[start:end], model.RequestPending, false).
			Order("request_date ASC, created_at ASC").
			Find(&chunk).Error
		if err != nil {
			return nil, err
		}
		result = append(result, chunk...)
	}
	return result, nil
}

func (r *requestRepository) ListPendingByReceiver(ctx context.Context, receiver string) ([]model.Request, error) {
	var requests []model.Request
	err := GetDB(ctx, r.db).
		Where("LOWER(receiver) = LOWER(?) AND status = ? AND is_done = ?", receiver, model.RequestPending, false).
		Order("request_date ASC, created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Request{}, "id = ?", id).Error
}
