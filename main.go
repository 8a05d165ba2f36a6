package main

import (
	"embed"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"orderboard/adapters/coercer"
	"orderboard/adapters/sheets"
	"orderboard/app"
	"orderboard/domain/order"
	"orderboard/internal"
	"orderboard/internal/cache"
	"orderboard/internal/config"
	"orderboard/internal/testkit"
	"orderboard/ports"
	"orderboard/ui"
)

//go:embed ui/templates ui/static
var embeddedFiles embed.FS

// newSource picks the order source: generated demo data, a local export or
// the published spreadsheet
func newSource(cfg *config.Config, logger *internal.Logger) ports.SourceFetcher {
	switch {
	case cfg.Source.Demo:
		logger.Warn("SOURCE_DEMO is set, serving generated orders")
		return testkit.NewDemoSource(testkit.DefaultOrderConfig())
	case cfg.Source.File != "":
		logger.Info("reading orders from %s", cfg.Source.File)
		return sheets.NewFileSource(cfg.Source.File, logger)
	default:
		fetcher := sheets.NewFetcher(sheets.ConfigFrom(cfg.Source), &http.Client{}, logger)
		logger.Info("reading orders from %s", fetcher.ExportURL())
		return fetcher
	}
}

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

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))
	internal.DefaultLogger = logger

	tables, err := order.DefaultStatusTables()
	if appConfig.Data.StatusTablesFile != "" {
		tables, err = order.LoadStatusTables(appConfig.Data.StatusTablesFile)
	}
	if err != nil {
		log.Fatalf("Failed to load status tables: %v", err)
	}

	location, err := appConfig.Data.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}
	convention := coercer.NewNumberConvention(appConfig.Data.DecimalSeparator, appConfig.Data.ThousandsSeparator)

	pipeline := app.NewPipeline(
		coercer.NewDateNormalizer(location),
		coercer.NewTotalNormalizer(convention),
		tables,
		logger,
	)

	datasets, err := cache.New[*order.Dataset](appConfig.Cache.Size)
	if err != nil {
		log.Fatalf("Failed to create dataset cache: %v", err)
	}
	board := app.NewBoardService(newSource(appConfig, logger), pipeline, datasets, appConfig.Cache.TTL, logger)

	server, err := ui.NewServer(embeddedFiles, board, location, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	defer server.Close()
	board.Subscribe(server.Events())

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("🚀 Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("❌ pprof server failed: %v", err)
			}
		}()
	}

	log.Printf("🚀 Starting order board on port %s", appConfig.Server.Port)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
