package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"rsi_bot/internal/modules/health/service"
)

func Mount(r gin.IRoutes, state *service.State) {
	r.GET("/livez", func(c *gin.Context) {
		// liveness: процесс жив
		c.String(http.StatusOK, "ok")
	})

	r.GET("/readyz", func(c *gin.Context) {
		// readiness: дефолтные символы подняты
		if !state.Ready() {
			c.String(http.StatusServiceUnavailable, "not ready")
			return
		}
		c.String(http.StatusOK, "ready")
	})

	r.GET("/healthz", func(c *gin.Context) {
		var lastCandle int64
		if t := state.LastCandle(); !t.IsZero() {
			lastCandle = t.Unix()
		}
		c.JSON(http.StatusOK, gin.H{
			"ready":          state.Ready(),
			"monitors":       state.Monitors(),
			"feedsConnected": state.FeedsConnected(),
			"uptimeSec":      int64(state.Uptime().Seconds()),
			"lastCandleUnix": lastCandle,
		})
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
		),
		fx.Invoke(func(r *gin.Engine, state *service.State) {
			Mount(r, state)
		}),
	)
}
