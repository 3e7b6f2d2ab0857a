package handler

import (
	"net/http"

	"worktracker/internal/middleware"
	"worktracker/internal/service"
	"worktracker/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requests service.RequestService
	auth     *middleware.Authenticator
}

func NewRequestHandler(requests service.RequestService, auth *middleware.Authenticator) *RequestHandler {
	return &RequestHandler{requests: requests, auth: auth}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	requests.Use(h.auth.RequireAuth())
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListByDocument)
		requests.GET("/incoming", h.ListIncoming)
		requests.PUT("/:id", h.UpdateRequest)
		requests.DELETE("/:id", h.DeleteRequest)
		requests.PUT("/:id/status", h.SetStatus)
	}
}

// CreateRequest files a new date request on behalf of the caller
// @Summary      Create request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Response{data=model.Request}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	id, _ := middleware.CurrentIdentity(c)
	req.Sender = id.Name

	created, err := h.requests.CreateRequest(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// ListByDocument returns every request filed against a work item
// @Summary      Requests of a work item
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        document_number  query     string  true  "Work item document number"
// @Success      200              {object}  response.Response{data=[]model.Request}
// @Failure      400              {object}  response.Response
// @Router       /api/requests [get]
func (h *RequestHandler) ListByDocument(c *gin.Context) {
	documentNumber := c.Query("document_number")
	if documentNumber == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "document_number is required"))
		return
	}

	requests, err := h.requests.GetRequestsByDocument(c.Request.Context(), documentNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// ListIncoming returns pending requests addressed to the caller
// @Summary      Incoming requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Request}
// @Router       /api/requests/incoming [get]
func (h *RequestHandler) ListIncoming(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	requests, err := h.requests.GetPendingRequestsByReceiver(c.Request.Context(), id.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// UpdateRequest edits a pending request
// @Summary      Update request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Request id"
// @Param        payload  body      service.UpdateRequestDTO  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Request}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	var req service.UpdateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	id, _ := middleware.CurrentIdentity(c)

	updated, err := h.requests.UpdateRequest(c.Request.Context(), c.Param("id"), req, id.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// DeleteRequest removes a pending request
// @Summary      Delete request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	if err := h.requests.DeleteRequest(c.Request.Context(), c.Param("id"), id.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request deleted successfully"}))
}

// SetStatus accepts or declines a request
// @Summary      Resolve request
// @Description  ACCEPTED writes the proposed date into the sender's assignment in the same transaction.
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Request id"
// @Param        payload  body      service.SetStatusDTO  true  "New status"
// @Success      200      {object}  response.Response{data=model.Request}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/status [put]
func (h *RequestHandler) SetStatus(c *gin.Context) {
	var req service.SetStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	id, _ := middleware.CurrentIdentity(c)

	resolved, err := h.requests.SetRequestStatus(c.Request.Context(), c.Param("id"), req.Status, id.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, resolved))
}
