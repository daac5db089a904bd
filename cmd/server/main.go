package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"sim_backend/internal/app/router"
	executionhandler "sim_backend/internal/feature/execution/transport/handler"
	executionusecase "sim_backend/internal/feature/execution/usecase"
	"sim_backend/internal/feature/replay/adapters"
	"sim_backend/internal/feature/replay/adapters/filestore"
	"sim_backend/internal/feature/replay/domain/entity"
	replayhandler "sim_backend/internal/feature/replay/transport/handler"
	replayusecase "sim_backend/internal/feature/replay/usecase"
	symbolhandler "sim_backend/internal/feature/symbols/transport/handler"
	symbolusecase "sim_backend/internal/feature/symbols/usecase"
	"sim_backend/internal/platform/cache"
	infradb "sim_backend/internal/platform/db"
	infraredis "sim_backend/internal/platform/redis"
)

// candleStore is the full store surface the server wires: series reads for
// the loader, listings for the symbols feature.
type candleStore interface {
	ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error)
	ListIntervals(ctx context.Context, ticker string) ([]entity.Interval, error)
	List(ctx context.Context) (map[string][]entity.Interval, error)
}

func main() {
	// .env（ローカル開発用、無ければ環境変数のみ）
	_ = godotenv.Load()

	// Candle store: raw data files by default, the ingested sqlite DB when
	// STORE_BACKEND=db.
	var store candleStore
	if os.Getenv("STORE_BACKEND") == "db" {
		store = adapters.NewCandleRepository(infradb.OpenDB())
	} else {
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "./data"
		}
		store = filestore.NewStore(dataDir)
	}

	// Redis（任意）: シリーズ読み取りのプロセス間キャッシュ
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without the series cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}
	cachedStore := cache.NewCachingCandleRepository(rdb, 5*time.Minute, store, "series")

	// 取引セッション設定（ジャカルタ証券取引所がデフォルト）
	clock := replayusecase.NewSessionClock(
		envInt("EXCHANGE_UTC_OFFSET", replayusecase.DefaultUTCOffsetHours),
		envInt("MARKET_OPEN_HOUR", replayusecase.DefaultOpenHour),
		envInt("MARKET_CLOSE_HOUR", replayusecase.DefaultCloseHour),
	)

	// Usecase
	warmupCache := cache.NewWarmupCache(0, 0) // defaults: 10 entries, 5 minutes
	loaderUC := replayusecase.NewLoaderUsecase(cachedStore, warmupCache, clock)
	fillUC := executionusecase.NewFillUsecase()
	symbolUC := symbolusecase.NewSymbolUsecase(store)

	// Handler
	replayH := replayhandler.NewReplayHandler(loaderUC, warmupCache)
	fillH := executionhandler.NewFillHandler(fillUC, cachedStore)
	symbolH := symbolhandler.NewSymbolHandler(symbolUC)

	// ルータ生成
	r := router.NewRouter(replayH, fillH, symbolH)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s=%q is not an integer, using %d", key, os.Getenv(key), def)
	}
	return def
}
