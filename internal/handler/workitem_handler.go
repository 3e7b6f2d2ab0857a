package handler

import (
	"net/http"
	"strconv"

	"worktracker/internal/middleware"
	"worktracker/internal/service"
	"worktracker/pkg/pagination"
	"worktracker/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkItemHandler struct {
	workItems   service.WorkItemService
	auth        *middleware.Authenticator
	pageSize    int
	maxPageSize int
}

func NewWorkItemHandler(workItems service.WorkItemService, auth *middleware.Authenticator, pageSize, maxPageSize int) *WorkItemHandler {
	return &WorkItemHandler{workItems: workItems, auth: auth, pageSize: pageSize, maxPageSize: maxPageSize}
}

func (h *WorkItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/work-items")
	items.Use(h.auth.RequireAuth())
	{
		items.GET("", h.ListWorkItems)
		items.GET("/export", h.ExportWorkItems)
	}

	divisions := router.Group("/api/divisions/:id")
	divisions.Use(h.auth.RequireAuth())
	{
		divisions.GET("/name", h.GetDivisionName)
		divisions.GET("/executors", h.GetExecutors)
		divisions.GET("/approvers", h.GetApprovers)
		divisions.DELETE("/cache", h.auth.RequireRole("admin"), h.ClearCache)
	}
}

// ListWorkItems returns one page of open work items
// @Summary      List work items
// @Description  Filtered, paged work items of a division, or of every division the caller may read when division_id is 0. Items with a pending request from the caller carry a highlight class.
// @Tags         work-items
// @Security     BearerAuth
// @Produce      json
// @Param        division_id  query     int     false  "Division id, 0 for all allowed divisions"
// @Param        start_date   query     string  false  "Inclusive lower bound on the effective date (YYYY-MM-DD)"
// @Param        end_date     query     string  false  "Inclusive upper bound on the effective date (YYYY-MM-DD)"
// @Param        executor     query     string  false  "Executor substring"
// @Param        approver     query     string  false  "Approver substring"
// @Param        search       query     string  false  "Free text"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        page_size    query     int     false  "Items per page"
// @Success      200          {object}  response.Response{data=[]model.WorkItem}
// @Failure      400          {object}  response.Response
// @Router       /api/work-items [get]
func (h *WorkItemHandler) ListWorkItems(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	p := pagination.Parse(c, h.pageSize, h.maxPageSize)
	q.Page, q.PageSize = p.Page, p.PageSize

	page, err := h.workItems.GetFilteredWorkItems(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, page.Items, response.PageMeta{
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		TotalPages:  page.TotalPages,
		TotalCount:  page.TotalCount,
	}))
}

// ExportWorkItems returns every filtered work item without paging
// @Summary      Export work items
// @Tags         work-items
// @Security     BearerAuth
// @Produce      json
// @Param        division_id  query     int     false  "Division id, 0 for all allowed divisions"
// @Param        start_date   query     string  false  "YYYY-MM-DD"
// @Param        end_date     query     string  false  "YYYY-MM-DD"
// @Param        executor     query     string  false  "Executor substring"
// @Param        approver     query     string  false  "Approver substring"
// @Param        search       query     string  false  "Free text"
// @Success      200          {object}  response.Response{data=[]model.WorkItem}
// @Router       /api/work-items/export [get]
func (h *WorkItemHandler) ExportWorkItems(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}

	items, err := h.workItems.GetAllFilteredUnpaged(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

func (h *WorkItemHandler) bindQuery(c *gin.Context) (service.WorkItemQuery, bool) {
	id, _ := middleware.CurrentIdentity(c)

	divisionID := 0
	if raw := c.Query("division_id"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "division_id must be a non-negative integer"))
			return service.WorkItemQuery{}, false
		}
		divisionID = v
	}

	start, err := service.ParseDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "start_date: "+err.Error()))
		return service.WorkItemQuery{}, false
	}
	end, err := service.ParseDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "end_date: "+err.Error()))
		return service.WorkItemQuery{}, false
	}

	return service.WorkItemQuery{
		DivisionID: divisionID,
		Filter: service.WorkItemFilter{
			StartDate: start,
			EndDate:   end,
			Executor:  c.Query("executor"),
			Approver:  c.Query("approver"),
			Search:    c.Query("search"),
		},
		CallerUserID:    id.UserID,
		CurrentUserName: id.Name,
	}, true
}

// GetDivisionName
// @Summary      Division display name
// @Tags         divisions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Division id"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/divisions/{id}/name [get]
func (h *WorkItemHandler) GetDivisionName(c *gin.Context) {
	divisionID, ok := divisionParam(c)
	if !ok {
		return
	}
	name, err := h.workItems.GetDivisionName(c.Request.Context(), divisionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": divisionID, "name": name}))
}

// GetExecutors lists executor names for the filter dropdown; id 0 covers all divisions
// @Summary      Division executors
// @Tags         divisions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Division id"
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/divisions/{id}/executors [get]
func (h *WorkItemHandler) GetExecutors(c *gin.Context) {
	divisionID, ok := divisionParam(c)
	if !ok {
		return
	}
	names, err := h.workItems.GetExecutors(c.Request.Context(), divisionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, names))
}

// GetApprovers lists approver names of open assignments; id 0 covers all divisions
// @Summary      Division approvers
// @Tags         divisions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Division id"
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/divisions/{id}/approvers [get]
func (h *WorkItemHandler) GetApprovers(c *gin.Context) {
	divisionID, ok := divisionParam(c)
	if !ok {
		return
	}
	names, err := h.workItems.GetApprovers(c.Request.Context(), divisionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, names))
}

// ClearCache drops the cached work items of a division
// @Summary      Clear division cache
// @Tags         divisions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Division id"
// @Success      200  {object}  response.Response{data=object}
// @Failure      403  {object}  response.Response
// @Router       /api/divisions/{id}/cache [delete]
func (h *WorkItemHandler) ClearCache(c *gin.Context) {
	divisionID, ok := divisionParam(c)
	if !ok {
		return
	}
	h.workItems.ClearCache(divisionID)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"division_id": divisionID, "cleared": true}))
}

func divisionParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid division id"))
		return 0, false
	}
	return id, true
}
