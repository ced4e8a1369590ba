package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseRequestHandler struct {
	purchaseService service.PurchaseService
	secret          []byte
}

func NewPurchaseRequestHandler(purchaseService service.PurchaseService, secret []byte) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{purchaseService: purchaseService, secret: secret}
}

func (h *PurchaseRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyone := middleware.RequireRole(h.secret, model.RoleRequester, model.RoleManager)
	managers := middleware.RequireRole(h.secret, model.RoleManager)

	requests := router.Group("/api/purchase-requests")
	{
		requests.POST("", anyone, h.Submit)
		requests.GET("", anyone, h.List)
		requests.GET("/:id", anyone, h.Get)
		requests.PUT("/:id/quotes/:quoteId/select", managers, h.SelectQuote)
		requests.PUT("/:id/approve", managers, h.Approve)
		requests.PUT("/:id/reject", managers, h.Reject)
	}
}

func actor(c *gin.Context) service.Identity {
	id, name, _ := middleware.Identity(c)
	return service.Identity{ID: id, Name: name}
}

// Submit creates a purchase request from the submitted form
// @Summary      Submit purchase request
// @Description  Creates a purchase request with its quotes. The request starts pending at approval level 1.
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitPurchaseRequestDTO  true  "Purchase request"
// @Success      201      {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-requests [post]
func (h *PurchaseRequestHandler) Submit(c *gin.Context) {
	var req service.SubmitPurchaseRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.purchaseService.Submit(c.Request.Context(), actor(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// List returns purchase requests newest first
// @Summary      List purchase requests
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "PENDING, PARTIALLY_APPROVED, APPROVED or REJECTED"
// @Param        level      query     int     false  "Current approval level (1 or 2), rejected requests excluded"
// @Param        requester  query     string  false  "Requester name"
// @Param        mine       query     bool    false  "Only requests of the authenticated user"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Failure      400        {object}  response.Response
// @Router       /api/purchase-requests [get]
func (h *PurchaseRequestHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.PurchaseRequestFilter{
		Requester: c.Query("requester"),
		Page:      p.Page,
		Limit:     p.Limit,
	}

	if s := c.Query("status"); s != "" {
		filter.Status = model.Status(s)
		if !filter.Status.Valid() {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid status: "+s))
			return
		}
	}
	if l := c.Query("level"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || !model.ApprovalLevel(n).Valid() {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid level: "+l))
			return
		}
		filter.Level = model.ApprovalLevel(n)
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		filter.Requester = actor(c).Name
	}

	requests, total, err := h.purchaseService.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(requests, total, p)))
}

// Get returns a single purchase request
// @Summary      Get purchase request
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id, URL-escaped (e.g. %23PED-2026-0001)"
// @Success      200  {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-requests/{id} [get]
func (h *PurchaseRequestHandler) Get(c *gin.Context) {
	result, err := h.purchaseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// SelectQuote marks one quote as chosen and fixes the request amount
// @Summary      Select quote
// @Tags         purchase-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Request id"
// @Param        quoteId  path      string  true  "Quote id"
// @Success      200      {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-requests/{id}/quotes/{quoteId}/select [put]
func (h *PurchaseRequestHandler) SelectQuote(c *gin.Context) {
	result, err := h.purchaseService.SelectQuote(c.Request.Context(), actor(c), c.Param("id"), c.Param("quoteId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Approve records the authenticated manager's approval at the current level
// @Summary      Approve purchase request
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "Request id"
// @Param        payload  body      service.DecisionDTO  false  "Optional note"
// @Success      200      {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-requests/{id}/approve [put]
func (h *PurchaseRequestHandler) Approve(c *gin.Context) {
	var req service.DecisionDTO
	// An empty body is allowed, the note is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Abort(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.purchaseService.Approve(c.Request.Context(), actor(c), c.Param("id"), req.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject closes the request with the manager's justification
// @Summary      Reject purchase request
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Request id"
// @Param        payload  body      service.DecisionDTO  true  "Rejection justification"
// @Success      200      {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-requests/{id}/reject [put]
func (h *PurchaseRequestHandler) Reject(c *gin.Context) {
	var req service.DecisionDTO
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Abort(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.purchaseService.Reject(c.Request.Context(), actor(c), c.Param("id"), req.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
