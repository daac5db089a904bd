// Package handler はexecutionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sim_backend/internal/api"
	executiondomain "sim_backend/internal/feature/execution/domain"
	"sim_backend/internal/feature/execution/domain/entity"
	"sim_backend/internal/feature/execution/transport/http/dto"
	"sim_backend/internal/feature/execution/usecase"
	replaydomain "sim_backend/internal/feature/replay/domain"
	replayentity "sim_backend/internal/feature/replay/domain/entity"
)

// FillSimulator は約定シミュレーションのユースケースインターフェースです。
type FillSimulator interface {
	Fill(orderSize float64, depth []entity.OrderBookLevel, side entity.Side) (entity.FillResult, error)
}

// SeriesReader supplies candle history for volatility-based synthetic depth.
type SeriesReader interface {
	ReadSeries(ctx context.Context, ticker string, interval replayentity.Interval) (replayentity.Series, error)
}

// FillHandler は約定シミュレーションのHTTPリクエストを処理します。
type FillHandler struct {
	uc     FillSimulator
	series SeriesReader
	depth  usecase.DepthConfig
}

// NewFillHandler はFillHandlerの新しいインスタンスを生成します。
func NewFillHandler(uc FillSimulator, series SeriesReader) *FillHandler {
	return &FillHandler{uc: uc, series: series, depth: usecase.DefaultDepthConfig()}
}

// FillOrderHandler は成行注文を板に対してシミュレートします。
// 板が指定されない場合は、銘柄のボラティリティ（ATR）から合成板を生成します。
//
// エンドポイント例:
// POST /orders/fill {"orderSize":80,"side":"buy","depth":[{"price":100,"quantity":50}]}
func (h *FillHandler) FillOrderHandler(c *gin.Context) {
	var req dto.FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "malformed request body"})
		return
	}

	side := entity.Side(req.Side)
	depth := req.Depth
	synthetic := false
	atrPct := 0.0

	if len(depth) == 0 && req.Ticker != "" {
		candles, err := h.loadCandles(c.Request.Context(), req.Ticker, req.Interval)
		if err != nil {
			if errors.Is(err, replaydomain.ErrNotFound) {
				c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "no data for the requested ticker and interval"})
				return
			}
			if errors.Is(err, errBadInterval) {
				c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
				return
			}
			slog.Error("synthetic depth series read failed", "ticker", req.Ticker, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
			return
		}
		atrPct = usecase.ATRPercent(candles, req.ATRPeriod)
		reference := candles[len(candles)-1].Close
		depth = usecase.BuildDepth(reference, atrPct, side, h.depth)
		synthetic = true
	}

	result, err := h.uc.Fill(req.OrderSize, depth, side)
	if err != nil {
		switch {
		case errors.Is(err, executiondomain.ErrInvalidOrderSize),
			errors.Is(err, executiondomain.ErrInvalidSide),
			errors.Is(err, executiondomain.ErrInvalidDepthOrdering):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("fill simulation failed", "ticker", req.Ticker, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.FillResponse{
		FillResult:     result,
		SyntheticDepth: synthetic,
		ATRPercent:     atrPct,
	})
}

// VolatilityHandler は銘柄のATRを返します。
//
// エンドポイント例:
// GET /volatility/BBCA.JK?interval=1m&period=14
func (h *FillHandler) VolatilityHandler(c *gin.Context) {
	ticker := c.Param("ticker")
	period, _ := strconv.Atoi(c.DefaultQuery("period", strconv.Itoa(usecase.DefaultATRPeriod)))

	candles, err := h.loadCandles(c.Request.Context(), ticker, c.DefaultQuery("interval", string(replayentity.Interval1m)))
	if err != nil {
		if errors.Is(err, replaydomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "no data for the requested ticker and interval"})
			return
		}
		if errors.Is(err, errBadInterval) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("volatility series read failed", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.VolatilityResponse{
		Ticker:     ticker,
		Interval:   c.DefaultQuery("interval", string(replayentity.Interval1m)),
		Period:     period,
		ATR:        usecase.ATR(candles, period),
		ATRPercent: usecase.ATRPercent(candles, period),
		Candles:    len(candles),
	})
}

var errBadInterval = errors.New("unknown interval")

func (h *FillHandler) loadCandles(ctx context.Context, ticker, interval string) ([]replayentity.Candle, error) {
	if interval == "" {
		interval = string(replayentity.Interval1m)
	}
	iv, err := replayentity.ParseInterval(interval)
	if err != nil {
		return nil, errBadInterval
	}
	s, err := h.series.ReadSeries(ctx, ticker, iv)
	if err != nil {
		return nil, err
	}
	if len(s.Candles) == 0 {
		return nil, replaydomain.ErrNotFound
	}
	return s.Candles, nil
}
