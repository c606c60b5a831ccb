package app

import (
	"fmt"
	"os"

	"github.com/carebridge/api/api"
	"github.com/carebridge/api/config"
	"github.com/carebridge/api/database"
	"github.com/carebridge/api/router"
	"github.com/carebridge/api/services"
	"github.com/carebridge/api/services/cron"
	"github.com/carebridge/api/services/gemini"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	db := store.GetDB()

	// AI client and the services built on it
	geminiClient := gemini.NewClient(gemini.Config{
		APIKey: getEnv.GEMINI_API_KEY,
		Model:  getEnv.GEMINI_MODEL,
	})
	summaryService := services.NewSummaryService(db, geminiClient)
	chatbotService := services.NewChatbotService(db, geminiClient)

	// Cron manager (enabled unless CRON_ENABLED=false)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		cronManager = cron.NewCronManager(summaryService)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, db, summaryService, chatbotService)

	return server.Run()
}
