package submission

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
	r.POST("/submissions/upload-url", h.GenerateUploadURL)
	r.POST("/slots/:slot_id/draft", h.SubmitDraft)
	r.POST("/videos/:video_id/revision", h.SubmitRevision)
	r.GET("/videos/:video_id/submissions", h.History)
}

type uploadURLRequest struct {
	Filename string `json:"filename"`
}

func (h *Handler) GenerateUploadURL(c *gin.Context) {
	var req uploadURLRequest
	// filename is optional, the extension defaults to .mp4
	_ = c.ShouldBindJSON(&req)

	target, err := h.svc.GenerateUploadURL(
		c.Request.Context(),
		middleware.TenantID(c),
		middleware.ActorID(c),
		req.Filename,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload": target})
}

func (h *Handler) SubmitDraft(c *gin.Context) {
	var p Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, sub, err := h.svc.SubmitDraft(
		c.Request.Context(),
		middleware.TenantID(c),
		c.Param("slot_id"),
		middleware.ActorID(c),
		p,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": v, "submission": sub})
}

func (h *Handler) SubmitRevision(c *gin.Context) {
	var p Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, sub, err := h.svc.SubmitRevision(
		c.Request.Context(),
		middleware.TenantID(c),
		c.Param("video_id"),
		middleware.ActorID(c),
		p,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": v, "submission": sub})
}

func (h *Handler) History(c *gin.Context) {
	subs, err := h.svc.History(c.Request.Context(), middleware.TenantID(c), c.Param("video_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}
