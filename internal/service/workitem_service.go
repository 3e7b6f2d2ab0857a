package service

import (
	"context"

	"worktracker/internal/model"
	"worktracker/pkg/pagination"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// WorkItemQuery selects and filters work items for one caller.
// DivisionID 0 means every division the caller may see.
type WorkItemQuery struct {
	DivisionID      int
	Filter          WorkItemFilter
	CallerUserID    int
	CurrentUserName string
	Page            int
	PageSize        int
}

type WorkItemPage struct {
	Items       []model.WorkItem `json:"items"`
	CurrentPage int              `json:"current_page"`
	PageSize    int              `json:"page_size"`
	TotalPages  int              `json:"total_pages"`
	TotalCount  int              `json:"total_count"`
}

// DivisionAccessSource resolves the divisions a user may read.
type DivisionAccessSource interface {
	AllowedDivisions(ctx context.Context, userID int) ([]int, error)
}

type WorkItemService interface {
	GetFilteredWorkItems(ctx context.Context, q WorkItemQuery) (WorkItemPage, error)
	GetAllFilteredUnpaged(ctx context.Context, q WorkItemQuery) ([]model.WorkItem, error)
	GetDivisionName(ctx context.Context, divisionID int) (string, error)
	GetExecutors(ctx context.Context, divisionID int) ([]string, error)
	GetApprovers(ctx context.Context, divisionID int) ([]string, error)
	ClearCache(divisionID int)
}

type workItemService struct {
	cache       *WorkItemCache
	access      DivisionAccessSource
	highlighter *Highlighter
	log         logrus.FieldLogger
}

func NewWorkItemService(cache *WorkItemCache, access DivisionAccessSource, highlighter *Highlighter, log logrus.FieldLogger) WorkItemService {
	return &workItemService{cache: cache, access: access, highlighter: highlighter, log: log}
}

// GetFilteredWorkItems returns one page of filtered work items. Only the returned page
// is highlighted; annotations never influence filtering or paging.
func (s *workItemService) GetFilteredWorkItems(ctx context.Context, q WorkItemQuery) (WorkItemPage, error) {
	items, err := s.filtered(ctx, q)
	if err != nil {
		return WorkItemPage{}, err
	}

	w := pagination.Window(q.Page, q.PageSize, len(items))
	pageItems := items[w.Offset:w.End]
	if err := s.highlighter.HighlightRows(ctx, pageItems, q.CurrentUserName); err != nil {
		return WorkItemPage{}, errors.Wrap(err, "failed to load pending requests")
	}

	return WorkItemPage{
		Items:       pageItems,
		CurrentPage: w.Page,
		PageSize:    w.PageSize,
		TotalPages:  w.TotalPages,
		TotalCount:  w.TotalCount,
	}, nil
}

// GetAllFilteredUnpaged returns every filtered, highlighted work item; used for export.
func (s *workItemService) GetAllFilteredUnpaged(ctx context.Context, q WorkItemQuery) ([]model.WorkItem, error) {
	items, err := s.filtered(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.highlighter.HighlightRows(ctx, items, q.CurrentUserName); err != nil {
		return nil, errors.Wrap(err, "failed to load pending requests")
	}
	return items, nil
}

func (s *workItemService) filtered(ctx context.Context, q WorkItemQuery) ([]model.WorkItem, error) {
	divisions, err := s.divisionsFor(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(divisions) == 0 {
		s.log.WithField("user_id", q.CallerUserID).Debug("caller has no readable divisions")
		return []model.WorkItem{}, nil
	}

	items, err := s.cache.GetForDivisions(ctx, divisions)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(items, q.Filter), nil
}

func (s *workItemService) divisionsFor(ctx context.Context, q WorkItemQuery) ([]int, error) {
	if q.DivisionID != 0 {
		return []int{q.DivisionID}, nil
	}
	ids, err := s.access.AllowedDivisions(ctx, q.CallerUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve caller divisions")
	}
	return ids, nil
}

func (s *workItemService) GetDivisionName(ctx context.Context, divisionID int) (string, error) {
	return s.cache.GetDivisionName(ctx, divisionID)
}

func (s *workItemService) GetExecutors(ctx context.Context, divisionID int) ([]string, error) {
	return s.cache.GetExecutors(ctx, divisionID)
}

func (s *workItemService) GetApprovers(ctx context.Context, divisionID int) ([]string, error) {
	return s.cache.GetApprovers(ctx, divisionID)
}

func (s *workItemService) ClearCache(divisionID int) {
	s.cache.ClearCache(divisionID)
}
