package campaign

import (
	"net/http"
	"strconv"

	"creatorplane/pkg/db/pagination"
	"creatorplane/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	campaigns := r.Group("/campaigns")
	campaigns.POST("", h.Create)
	campaigns.GET("", h.List)
	campaigns.GET("/:campaign_id", h.Get)
	campaigns.PATCH("/:campaign_id", h.Update)
	campaigns.POST("/:campaign_id/archive", h.Archive)

	campaigns.GET("/:campaign_id/creators", h.ListCreators)
	campaigns.POST("/:campaign_id/creators", h.AddCreator)
	campaigns.DELETE("/:campaign_id/creators/:creator_id", h.RemoveCreator)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.svc.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"campaign": campaign})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	campaigns, pageInfo, err := h.svc.List(c.Request.Context(), middleware.TenantID(c), pagination.Pagination{
		Cursor: c.Query("cursor"),
		Limit:  limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns, "page_info": pageInfo})
}

func (h *Handler) Get(c *gin.Context) {
	campaign, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), c.Param("campaign_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.svc.Update(c.Request.Context(), middleware.TenantID(c), c.Param("campaign_id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

func (h *Handler) Archive(c *gin.Context) {
	campaign, err := h.svc.Archive(c.Request.Context(), middleware.TenantID(c), c.Param("campaign_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

func (h *Handler) ListCreators(c *gin.Context) {
	creators, err := h.svc.ListCreators(c.Request.Context(), middleware.TenantID(c), c.Param("campaign_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"creators": creators})
}

func (h *Handler) AddCreator(c *gin.Context) {
	var req AddCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, err := h.svc.AddCreator(c.Request.Context(), middleware.TenantID(c), c.Param("campaign_id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"creator": creator})
}

func (h *Handler) RemoveCreator(c *gin.Context) {
	err := h.svc.RemoveCreator(c.Request.Context(), middleware.TenantID(c), c.Param("campaign_id"), c.Param("creator_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
