package main

import (
	"fmt"
	"log"
	"strings"

	"contractbot/adapters/excel"
	"contractbot/adapters/llm"
	"contractbot/app"
	"contractbot/internal"
	"contractbot/internal/config"
	"contractbot/internal/secrets"
	"contractbot/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.SetDefaultLevel(appConfig.LogLevel)
	gin.SetMode(appConfig.Server.GinMode)

	reader := excel.NewDataReader(excel.DefaultReaderConfig())
	ingest := app.NewIngestService(reader, appConfig.Data, appConfig.Server.MaxUploadBytes)
	resolver := secrets.NewResolver(appConfig.Secrets)

	credential := resolver.Resolve()
	log.Printf("LLM backend %s (model %s), %s credential source: %s",
		appConfig.AI.Backend, appConfig.AI.Model, resolver.EnvKey(), credential.Source)
	log.Printf("Example dataset: %s", ingest.FallbackPath())

	renderer, err := ui.NewRenderer(ui.Dependencies{
		Config:  appConfig,
		Ingest:  ingest,
		Secrets: resolver,
		Engines: llm.NewQueryEngine,
	})
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	server := ui.NewServer(renderer)
	if err := server.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	addr := fmt.Sprintf(":%s", strings.TrimPrefix(appConfig.Server.Port, ":"))
	if err := server.Start(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
