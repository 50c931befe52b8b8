package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"adflow/internal/backend/publish"
	"adflow/internal/common"
	"adflow/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (domain.Product, error)
}

type Copywriter interface {
	AdText(ctx context.Context, req domain.AdTextRequest) (string, error)
	AdImage(ctx context.Context, req domain.AdImageRequest) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, req domain.PublishRequest) (domain.PublishConfirmation, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PublishRecord, error)
	History(ctx context.Context, platform domain.Platform, accountID string, limit int) ([]domain.PublishRecord, error)
}

// BackendHandler serves the endpoints the workflow client calls.
type BackendHandler struct {
	scraper    Scraper
	copywriter Copywriter
	publisher  Publisher
}

func NewBackendHandler(s Scraper, c Copywriter, p Publisher) *BackendHandler {
	return &BackendHandler{scraper: s, copywriter: c, publisher: p}
}

func (h *BackendHandler) Register(router gin.IRoutes) {
	router.GET("/", h.Home)
	router.GET("/scrape/", h.Scrape)
	router.POST("/generate_ad/", h.GenerateAd)
	router.POST("/generate_image/", h.GenerateImage)
	router.POST("/publish_ad/", h.PublishAd)
	router.GET("/publish_ad/:id", h.GetPublish)
	router.GET("/publish_ad/", h.ListPublished)
}

func (h *BackendHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Shopify Product Scraper API is running"})
}

// Scrape reports fetch failures in the body with status 200, the way
// existing clients of this endpoint expect.
func (h *BackendHandler) Scrape(c *gin.Context) {
	pageURL := strings.TrimSpace(c.Query("url"))
	if pageURL == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "query parameter url is required"})
		return
	}
	product, err := h.scraper.Scrape(c.Request.Context(), pageURL)
	if err != nil {
		common.Logger().Warn("scrape failed", "component", "backend", "url", pageURL, "error", err)
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *BackendHandler) GenerateAd(c *gin.Context) {
	var req domain.AdTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	text, err := h.copywriter.AdText(c.Request.Context(), req)
	if err != nil {
		common.Logger().Error("ad text generation failed", "component", "backend", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if text == "" {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ad_text": text})
}

func (h *BackendHandler) GenerateImage(c *gin.Context) {
	var req domain.AdImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		req.Prompt = domain.DefaultImagePrompt
	}
	imageURL, err := h.copywriter.AdImage(c.Request.Context(), req)
	if err != nil {
		common.Logger().Error("ad image generation failed", "component", "backend", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if imageURL == "" {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

func (h *BackendHandler) PublishAd(c *gin.Context) {
	var req domain.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	conf, err := h.publisher.Publish(c.Request.Context(), req)
	switch {
	case errors.Is(err, publish.ErrInvalidRequest):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	case errors.Is(err, publish.ErrRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conf.Raw)
}

func (h *BackendHandler) GetPublish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid publish id"})
		return
	}
	record, err := h.publisher.Get(c.Request.Context(), id)
	if errors.Is(err, domain.ErrPublishRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *BackendHandler) ListPublished(c *gin.Context) {
	platform := domain.Platform(c.Query("platform"))
	accountID := strings.TrimSpace(c.Query("accountId"))
	if !platform.Valid() || accountID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "platform and accountId are required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	records, err := h.publisher.History(c.Request.Context(), platform, accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
