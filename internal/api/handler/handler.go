package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"adflow/internal/api/dto"
	"adflow/internal/domain"
	"adflow/internal/orchestrator"
	"adflow/internal/render"
	"adflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WorkflowHandler struct {
	service service.WorkflowService
}

func NewWorkflowHandler(svc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

// Register mounts the session routes on a router group.
func (h *WorkflowHandler) Register(api *gin.RouterGroup) {
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DiscardSession)

	api.POST("/sessions/:id/fetch", h.FetchProduct)
	api.POST("/sessions/:id/ad-text", h.GenerateAdText)
	api.POST("/sessions/:id/ad-image", h.GenerateAdImage)
	api.POST("/sessions/:id/publish", h.RequestPublish)

	api.GET("/sessions/:id/notifications", h.Notifications)
	api.GET("/sessions/:id/events", h.Events)
	api.GET("/sessions/:id/preview", h.Preview)
}

func (h *WorkflowHandler) CreateSession(c *gin.Context) {
	state, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.WorkflowResponse{State: state})
}

func (h *WorkflowHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.WorkflowResponse{State: state})
}

func (h *WorkflowHandler) DiscardSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.service.DiscardSession(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkflowHandler) FetchProduct(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.FetchProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.service.FetchProduct(c.Request.Context(), id, req.URL)
	respond(c, state, err)
}

func (h *WorkflowHandler) GenerateAdText(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.service.GenerateAdText(c.Request.Context(), id)
	respond(c, state, err)
}

func (h *WorkflowHandler) GenerateAdImage(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.service.GenerateAdImage(c.Request.Context(), id)
	respond(c, state, err)
}

func (h *WorkflowHandler) RequestPublish(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.service.RequestPublish(c.Request.Context(), id, service.PublishCommand{
		Platform:     req.Platform,
		AccountID:    req.AccountID,
		IncludeText:  req.IncludeText,
		IncludeImage: req.IncludeImage,
	})
	respond(c, state, err)
}

func (h *WorkflowHandler) Notifications(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	notes, err := h.service.Notifications(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NotificationsResponse{Notifications: notes})
}

// Events streams the session's notifications as server-sent events until the client leaves.
func (h *WorkflowHandler) Events(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	stream, err := h.service.Subscribe(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Stream(func(w io.Writer) bool {
		n, open := <-stream
		if !open {
			return false
		}
		c.SSEvent(string(n.Severity), n)
		return true
	})
}

func (h *WorkflowHandler) Preview(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if state.Product == nil {
		c.JSON(statusFor(orchestrator.ErrNoProduct), gin.H{"error": orchestrator.ErrNoProduct.Error()})
		return
	}
	body, err := render.Preview(state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
		return
	}
	c.JSON(http.StatusOK, dto.PreviewResponse{HTML: body})
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

// respond always carries the post-command state so clients can re-render.
func respond(c *gin.Context, state domain.WorkflowState, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	resp := dto.WorkflowResponse{State: state}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrBusy):
		return http.StatusConflict
	case orchestrator.IsPrecondition(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
