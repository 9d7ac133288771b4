package main

import (
	"log"

	"contractbot/adapters/excel"
	"contractbot/adapters/llm"
	"contractbot/app"
	"contractbot/internal"
	"contractbot/internal/config"
	"contractbot/internal/secrets"
	"contractbot/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	internal.SetDefaultLevel(appConfig.LogLevel)

	reader := excel.NewDataReader(excel.DefaultReaderConfig())
	renderer, err := ui.NewRenderer(ui.Dependencies{
		Config:  appConfig,
		Ingest:  app.NewIngestService(reader, appConfig.Data, appConfig.Server.MaxUploadBytes),
		Secrets: secrets.NewResolver(appConfig.Secrets),
		Engines: llm.NewQueryEngine,
	})
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	uiApp := ui.NewApp(renderer)
	log.Fatal(uiApp.Start(ui.Config{Port: appConfig.Server.Port}))
}
