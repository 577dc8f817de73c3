package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/feed"
	"github.com/petzzshop/ops-backend/internal/repository"
	"github.com/petzzshop/ops-backend/internal/repository/postgres"
	"github.com/petzzshop/ops-backend/internal/storage"
)

// The ingest server feeds the competitor price store from the comparison
// provider's Drive folder and S3 snapshot bucket. It runs separately from
// the read-only decision API.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var driveService *feed.DriveService
	if cfg.Feed.DriveCredentialsJSON != "" {
		driveService, err = feed.NewDriveService(cfg.Feed.DriveCredentialsJSON)
		if err != nil {
			log.Fatalf("Failed to initialize Drive feed source: %v", err)
		}
	}

	var objectStore storage.ObjectStorage
	if cfg.Feed.S3Endpoint != "" {
		objectStore, err = storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Feed.S3Endpoint,
			AccessKey: cfg.Feed.S3AccessKey,
			SecretKey: cfg.Feed.S3SecretKey,
			Bucket:    cfg.Feed.S3Bucket,
			Region:    cfg.Feed.S3Region,
			UseSSL:    cfg.Feed.S3UseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize object storage feed source: %v", err)
		}
	}

	competitorRepo := repository.NewCompetitorPriceRepository(db)
	ingestService := feed.NewIngestService(driveService, objectStore, competitorRepo)

	r := mux.NewRouter()

	feedHandler := feed.NewHandler(driveService, ingestService, cfg.Feed.DriveFolderPath, cfg.Feed.S3Prefix)
	feedHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
