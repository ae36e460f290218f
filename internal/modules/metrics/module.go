package metrics

import (
	"rsi_bot/internal/modules/metrics/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			service.NewMetrics,
		),
		fx.Invoke(func(r *gin.Engine, m *service.Metrics) {
			r.GET("/metrics", gin.WrapH(m.Handler()))
		}),
	)
}
