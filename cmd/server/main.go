package main

import (
	"log"

	appfx "github.com/amityadav/newsagg/internal/fx"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Run blocks until the app receives a shutdown signal
	app := fx.New(
		appfx.Core,         // Provides: config, logger, store, provider registry, aggregator
		appfx.WorkerModule, // Provides: *worker.Worker
		appfx.ServerModule, // Starts the HTTP server and the refresh scheduler
	)
	app.Run()
}
