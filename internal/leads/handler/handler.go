package handler

import (
	"net/http"
	"strconv"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/lifecycle"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/transport"
	"github.com/niketshah083/lead-management-backend-sub002/internal/visibility"
	"github.com/niketshah083/lead-management-backend-sub002/platform/httpkit"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Handler struct {
	coord *lifecycle.Coordinator
	val   *validator.Validator
}

func New(coord *lifecycle.Coordinator, val *validator.Validator) *Handler {
	return &Handler{coord: coord, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListLeads)
	rg.POST("", h.CreateLead)
	rg.GET("/:id", h.GetLead)
	rg.PUT("/:id", h.UpdateLead)
	rg.DELETE("/:id", h.DeleteLead)
	rg.POST("/:id/transition", h.Transition)
	rg.GET("/:id/history", h.ListHistory)
	rg.GET("/:id/sla", h.GetTracking)
	rg.GET("/:id/messages", h.ListMessages)
	rg.POST("/:id/messages", h.AddMessage)
}

// actor builds the visibility actor from the authenticated identity.
func actor(c *gin.Context) (visibility.Actor, bool) {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		httpkit.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return visibility.Actor{}, false
	}

	role, ok := dirdomain.ParseRole(identity.Role())
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "unknown role", nil)
		return visibility.Actor{}, false
	}

	return visibility.Actor{ID: identity.UserID(), Role: role}, true
}

func (h *Handler) CreateLead(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.coord.CreateLead(c.Request.Context(), act, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetLead(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.coord.GetLead(c.Request.Context(), act, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) ListLeads(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	leads, err := h.coord.ListLeads(c.Request.Context(), act, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, leads)
}

func (h *Handler) UpdateLead(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.coord.UpdateLead(c.Request.Context(), act, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) DeleteLead(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.coord.DeleteLead(c.Request.Context(), act, id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

func (h *Handler) Transition(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.coord.RequestTransition(c.Request.Context(), act, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) ListHistory(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	history, err := h.coord.ListHistory(c.Request.Context(), act, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, history)
}

func (h *Handler) GetTracking(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	tracking, err := h.coord.GetTracking(c.Request.Context(), act, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, tracking)
}

func (h *Handler) ListMessages(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	messages, err := h.coord.ListMessages(c.Request.Context(), act, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, messages)
}

func (h *Handler) AddMessage(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	message, err := h.coord.AddMessage(c.Request.Context(), act, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, message)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
