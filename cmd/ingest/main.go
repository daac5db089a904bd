package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sim_backend/internal/feature/ingest/usecase"
	"sim_backend/internal/feature/replay/adapters"
	"sim_backend/internal/feature/replay/adapters/filestore"
	"sim_backend/internal/platform/db"
)

func main() {
	_ = godotenv.Load()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	source := filestore.NewStore(dataDir)
	sink := adapters.NewCandleRepository(db.OpenDB())
	uc := usecase.NewIngestUsecase(source, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := uc.IngestAll(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("ingest ok")
}
