package slot

import (
	"net/http"

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
	slots := r.Group("/slots")
	slots.POST("", h.Create)
	slots.GET("", h.List)
	slots.GET("/:slot_id", h.Get)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sl, err := h.svc.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slot": sl})
}

func (h *Handler) List(c *gin.Context) {
	slots, err := h.svc.List(c.Request.Context(), middleware.TenantID(c), c.Query("campaign_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) Get(c *gin.Context) {
	sl, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), c.Param("slot_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slot": sl})
}
