package main

import (
	"log"

	"github.com/neogeo/surveyor-tracking-backend/internal/api"
	"github.com/neogeo/surveyor-tracking-backend/internal/broadcast"
	"github.com/neogeo/surveyor-tracking-backend/internal/config"
	"github.com/neogeo/surveyor-tracking-backend/internal/database"
	"github.com/neogeo/surveyor-tracking-backend/internal/handler"
	"github.com/neogeo/surveyor-tracking-backend/internal/repository"
	"github.com/neogeo/surveyor-tracking-backend/internal/service"
)

func main() {
	cfg := config.Load()

	// Initialize database
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	// Repositories
	locations := repository.NewLocationRepository(db)
	surveyors := repository.NewSurveyorRepository(db)

	// Live-location broadcast, disabled without brokers
	var publisher broadcast.Publisher = broadcast.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := broadcast.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafka.Close()
		publisher = kafka
		log.Printf("Broadcasting live locations to %v", cfg.KafkaBrokers)
	}

	// Services
	activity := service.NewActivityService(surveyors, locations)
	ingest := service.NewIngestService(locations, activity, publisher)
	tracks := service.NewTrackService(locations, surveyors, activity)
	directory := service.NewSurveyorService(surveyors, locations, activity)

	// Router
	router := api.SetupRouter(cfg, api.Handlers{
		Location: handler.NewLocationHandler(ingest, tracks),
		Surveyor: handler.NewSurveyorHandler(directory, tracks, activity, cfg.JWTSecret),
		Config:   handler.NewConfigHandler(directory),
	}, directory)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
