package video

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("video.module",
	fx.Provide(NewService),
)

var Routes = fx.Module("video.routes",
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

func registerRoutes(e *gin.Engine, h *Handler) {
	h.Register(e.Group("/v1"))
}
