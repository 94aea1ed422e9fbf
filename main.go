package main

import (
	"context"
	"fmt"
	"os"

	"airbnb-etl/config"
	"airbnb-etl/extract"
	"airbnb-etl/services"
	"airbnb-etl/storage"
	"airbnb-etl/utils"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewFileLogger(cfg.LogDir, "LOG PIPELINE - AIRBNB CDMX")
	if err != nil {
		logger = utils.NewLogger()
		logger.Warn("Log file unavailable (%v), logging to console only", err)
	}
	defer logger.Close()

	logger.Info("=== Airbnb CDMX ETL starting ===")
	logger.Info("Config — db: %s | reviews sample: %d | scoring workers: %d",
		cfg.MongoDB, cfg.ReviewsSampleSize, cfg.ScoringConcurrency)

	ctx := context.Background()

	extractor := extract.New(cfg.MongoURI, cfg.MongoDB, cfg.MaxRetries, logger)
	rawListings, rawReviews, rawCalendar, err := extractor.ExtractAll(ctx)
	if err != nil {
		logger.Error("Extraction failed: %v", err)
		os.Exit(1)
	}

	transformer := services.NewTransformer(logger, services.TransformerConfig{
		ReviewsSampleSize:  cfg.ReviewsSampleSize,
		ScoringConcurrency: cfg.ScoringConcurrency,
	}, rawListings, rawReviews, rawCalendar)

	if _, err := transformer.Run(); err != nil {
		logger.Error("Transformation failed: %v", err)
		os.Exit(1)
	}

	cleanListings, scoredReviews, cleanCalendar, final, err := transformer.Results()
	if err != nil {
		logger.Error("Transformation incomplete: %v", err)
		os.Exit(1)
	}

	logger.Section("Carga de resultados")

	sqliteOK := false
	sqliteWriter, err := storage.NewSQLiteWriter(cfg.SQLitePath, logger)
	if err != nil {
		logger.Error("SQLite writer unavailable: %v", err)
	} else {
		defer sqliteWriter.Close()
		if err := sqliteWriter.Write(final); err != nil {
			logger.Error("SQLite write failed: %v", err)
		} else {
			sqliteOK = true
		}
	}

	xlsxWriter := storage.NewXLSXWriter(cfg.XLSXPath, logger)
	sheets := []storage.NamedTable{
		{Name: "listings_limpio", Table: cleanListings},
		{Name: "reviews_analizados", Table: scoredReviews},
		{Name: "calendar_agregado", Table: cleanCalendar},
	}
	xlsxOK := true
	if err := xlsxWriter.Write(sheets); err != nil {
		logger.Error("XLSX write failed: %v", err)
		xlsxOK = false
	}

	if sqliteOK || xlsxOK {
		logger.Section("Verificación de cargas")
		if sqliteOK {
			if err := sqliteWriter.Verify(final.Len()); err != nil {
				logger.Error("SQLite verification failed: %v", err)
			}
		}
		if xlsxOK {
			if err := xlsxWriter.Verify(); err != nil {
				logger.Error("XLSX verification failed: %v", err)
			}
		}
	} else {
		logger.Warn("No load succeeded, skipping verification")
	}

	logger.Info("Pipeline finished — final table: %d rows", final.Len())
	fmt.Printf("  Done. Analytics → %s | Workbook → %s\n\n", cfg.SQLitePath, cfg.XLSXPath)
}
