package video

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
	videos := r.Group("/videos")
	videos.GET("/:video_id", h.Get)
	videos.POST("/:video_id/admin-approve", h.transition(TransitionAdminApprove))
	videos.POST("/:video_id/admin-request-revision", h.transition(TransitionAdminRequestRevision))
	videos.POST("/:video_id/client-approve", h.transition(TransitionClientApprove))
	videos.POST("/:video_id/client-request-revision", h.transition(TransitionClientRequestRevision))
	videos.POST("/:video_id/final-signoff", h.transition(TransitionFinalSignOff))
	videos.POST("/:video_id/live-link", h.SubmitLiveLink)
}

func (h *Handler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), c.Param("video_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": v})
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) transition(t Transition) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		// body is optional for approval transitions
		_ = c.ShouldBindJSON(&req)

		v, err := h.svc.Review(c.Request.Context(), ReviewRequest{
			TenantID:   middleware.TenantID(c),
			VideoID:    c.Param("video_id"),
			Transition: t,
			Actor: Actor{
				ID:   middleware.ActorID(c),
				Role: middleware.ActorRole(c),
			},
			Notes: req.Notes,
		})
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"video": v})
	}
}

type liveLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) SubmitLiveLink(c *gin.Context) {
	var req liveLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	v, err := h.svc.SubmitLiveLink(
		c.Request.Context(),
		middleware.TenantID(c),
		c.Param("video_id"),
		middleware.ActorID(c),
		req.URL,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": v})
}
