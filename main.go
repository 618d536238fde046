package main

import (
	"embed"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"minevision/app"
	"minevision/internal/config"
	"minevision/internal/testkit"
	"minevision/ui"
)

//go:embed ui/templates/*
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	sourceFile := appConfig.Data.SourceFile
	if sourceFile == "" && appConfig.Data.DemoMode {
		sourceFile, err = writeDemoWorkbook()
		if err != nil {
			log.Fatalf("Failed to generate demo data: %v", err)
		}
	}

	pipeline := app.NewPipelineService(sourceFile)
	chat := app.NewChatService(pipeline)

	// Parse once at startup so schema problems show up in the log before
	// the first request. A failed load is not fatal; the file may appear
	// later and the cache retries on every request.
	if table, err := pipeline.Load(); err != nil {
		log.Printf("Source not loadable yet: %v", err)
	} else {
		log.Printf("Loaded %d fatigue alerts from %s", table.Len(), sourceFile)
	}

	server := ui.NewServer(embeddedFiles)
	if err := server.Initialize(pipeline, chat, appConfig); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Fatal(server.Start(":" + appConfig.Server.Port))
}

// writeDemoWorkbook generates a deterministic demo workbook for running the
// dashboard without a real export.
func writeDemoWorkbook() (string, error) {
	path := filepath.Join(os.TempDir(), "minevision_demo.csv")
	generator := testkit.NewFleetDataGenerator(testkit.DefaultFleetConfig())
	if err := generator.WriteCSV(path); err != nil {
		return "", err
	}
	log.Printf("Demo mode: generated %s", path)
	return path, nil
}
