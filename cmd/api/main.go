package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"minevision/app"
	"minevision/internal/config"
	"minevision/internal/testkit"
	"minevision/ui"
)

// Headless entry point: the JSON analytics API without the dashboard.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sourceFile := appConfig.Data.SourceFile
	if sourceFile == "" && appConfig.Data.DemoMode {
		path := filepath.Join(os.TempDir(), "minevision_demo.csv")
		if err := testkit.NewFleetDataGenerator(testkit.DefaultFleetConfig()).WriteCSV(path); err != nil {
			log.Fatalf("Failed to generate demo data: %v", err)
		}
		log.Printf("Demo mode: generated %s", path)
		sourceFile = path
	}

	pipeline := app.NewPipelineService(sourceFile)
	chat := app.NewChatService(pipeline)

	api := ui.NewApp(ui.AppConfig{Port: appConfig.Server.Port}, pipeline, chat)
	log.Fatal(api.Start())
}
