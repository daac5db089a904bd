// Package handler はreplayフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sim_backend/internal/api"
	"sim_backend/internal/feature/replay/domain"
	"sim_backend/internal/feature/replay/domain/entity"
	"sim_backend/internal/feature/replay/transport/http/dto"
	"sim_backend/internal/platform/cache"
)

// DefaultWarmupCount はwarmupクエリ未指定時のウォームアップ件数です。
const DefaultWarmupCount = 250

// ReplayUsecase はリプレイ組み立てのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ReplayUsecase interface {
	Load(ctx context.Context, ticker, date string, interval entity.Interval, warmupCount int) (entity.LoadResult, error)
}

// WarmupCacheControl exposes the cache operations the admin endpoints need.
type WarmupCacheControl interface {
	Stats() cache.WarmupStats
	Invalidate(ticker string)
	InvalidateAll()
}

// ReplayHandler はリプレイデータのHTTPリクエストを処理します。
type ReplayHandler struct {
	uc    ReplayUsecase
	cache WarmupCacheControl
}

// NewReplayHandler は指定されたusecaseとキャッシュでReplayHandlerを生成します。
func NewReplayHandler(uc ReplayUsecase, warmupCache WarmupCacheControl) *ReplayHandler {
	return &ReplayHandler{uc: uc, cache: warmupCache}
}

// GetReplayHandler は銘柄・日付・時間足を受け取り、ウォームアップバッファと
// シミュレーションキューをJSONで返します。
//
// エンドポイント例:
// GET /replay/BBCA.JK?date=2025-01-15&interval=5m&warmup=250
func (h *ReplayHandler) GetReplayHandler(c *gin.Context) {
	ticker := c.Param("ticker")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date query parameter is required"})
		return
	}
	interval, err := entity.ParseInterval(c.DefaultQuery("interval", string(entity.Interval1m)))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	// 不正な文字列は0になり、usecase側でクランプされる
	warmup, _ := strconv.Atoi(c.DefaultQuery("warmup", strconv.Itoa(DefaultWarmupCount)))

	result, err := h.uc.Load(c.Request.Context(), ticker, date, interval, warmup)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "no data for the requested ticker, date and interval"})
			return
		}
		slog.Error("replay load failed", "ticker", ticker, "date", date, "interval", interval, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.FromLoadResult(result))
}

// CacheStatsHandler はウォームアップキャッシュの統計を返します。
func (h *ReplayHandler) CacheStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats())
}

// InvalidateCacheHandler はキャッシュを無効化します。
// tickerクエリが指定された場合はその銘柄の全時間足のみを対象とします。
func (h *ReplayHandler) InvalidateCacheHandler(c *gin.Context) {
	if ticker := c.Query("ticker"); ticker != "" {
		h.cache.Invalidate(ticker)
	} else {
		h.cache.InvalidateAll()
	}
	c.Status(http.StatusNoContent)
}
