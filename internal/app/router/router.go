// Package router はアプリケーションのルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	executionhandler "sim_backend/internal/feature/execution/transport/handler"
	replayhandler "sim_backend/internal/feature/replay/transport/handler"
	symbolhandler "sim_backend/internal/feature/symbols/transport/handler"
	httphandler "sim_backend/internal/platform/http/handler"
)

func NewRouter(replay *replayhandler.ReplayHandler, fill *executionhandler.FillHandler,
	symbols *symbolhandler.SymbolHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", httphandler.Health)

	// シミュレーション可能な銘柄一覧
	r.GET("/symbols", symbols.List)

	// リプレイデータの組み立てとキャッシュ管理
	r.GET("/replay/:ticker", replay.GetReplayHandler)
	r.GET("/replay-cache/stats", replay.CacheStatsHandler)
	r.POST("/replay-cache/invalidate", replay.InvalidateCacheHandler)

	// 約定シミュレーションとボラティリティ
	r.POST("/orders/fill", fill.FillOrderHandler)
	r.GET("/volatility/:ticker", fill.VolatilityHandler)

	return r
}
