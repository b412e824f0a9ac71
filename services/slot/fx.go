package slot

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("slot.module",
	fx.Provide(NewService),
)

var Routes = fx.Module("slot.routes",
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

var SchedulerModule = fx.Module("slot.scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(StartScheduler),
)

func registerRoutes(e *gin.Engine, h *Handler) {
	h.Register(e.Group("/v1"))
}
