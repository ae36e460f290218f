package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"rsi_bot/internal/modules/api/service"
	binance "rsi_bot/internal/modules/binance_client/service"
	"rsi_bot/internal/modules/config"
	executor "rsi_bot/internal/modules/executor/service"
	"rsi_bot/internal/runner"
	"rsi_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), service.AccessLog())
	return r
}

func NewHandler(reg *runner.Registry, sender *executor.Sender, client *binance.Client) *service.Handler {
	return service.New(reg, sender, client)
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("[API] listening on %s", ln.Addr())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("[API] serve: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module - движок отдаётся и health/metrics, они вешают свои маршруты.
func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			NewEngine,
			NewHandler,
		),
		fx.Invoke(func(r *gin.Engine, h *service.Handler) {
			h.RegisterRoutes(r)
		}),
		fx.Invoke(RunHTTP),
	)
}
