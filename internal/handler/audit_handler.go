package handler

import (
	"net/http"

	"worktracker/internal/middleware"
	"worktracker/internal/service"
	"worktracker/pkg/pagination"
	"worktracker/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	auth         *middleware.Authenticator
}

func NewAuditHandler(auditService service.AuditService, auth *middleware.Authenticator) *AuditHandler {
	return &AuditHandler{auditService: auditService, auth: auth}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", h.auth.RequireRole("admin"), h.GetAuditLogs)
	router.GET("/api/requests/:id/history", h.auth.RequireAuth(), h.GetRequestHistory)
}

// GetAuditLogs lists workflow audit entries, newest first
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int  false  "Page number (default 1)"
// @Param        page_size  query     int  false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c, pagination.DefaultLimit, pagination.MaxLimit)
	if p.Page < 1 {
		p.Page = 1
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	w := pagination.Window(p.Page, p.PageSize, int(total))
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, logs, response.PageMeta{
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
		TotalPages:  w.TotalPages,
		TotalCount:  int(total),
	}))
}

// GetRequestHistory returns the audit trail of one request, oldest first
// @Summary      Request history
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/requests/{id}/history [get]
func (h *AuditHandler) GetRequestHistory(c *gin.Context) {
	logs, err := h.auditService.GetRequestHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
