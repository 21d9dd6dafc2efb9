// Command importer loads study projects from an .xlsx or .csv file
// (columns: id, title, studyMaterial) into the configured database.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/database"
	"github.com/studyaid/core/internal/modules/content/project"
	"go.uber.org/zap"
)

func main() {
	defaults := project.DefaultImportConfig()
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	filePath := flag.String("file", "", "Path to the .xlsx or .csv file")
	sheet := flag.String("sheet", defaults.SheetName, "Sheet name (xlsx only, default first sheet)")
	startRow := flag.Int("start-row", defaults.StartRow, "First data row, 1-based")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if strings.TrimSpace(*filePath) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	res, err := project.ReadRows(project.ImportConfig{
		FilePath:  *filePath,
		SheetName: *sheet,
		StartRow:  *startRow,
	})
	if err != nil {
		logger.Fatal("failed to read file", zap.String("file", *filePath), zap.Error(err))
	}
	for _, msg := range res.Errors {
		logger.Warn("row skipped", zap.String("reason", msg))
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := project.NewService(db).Import(ctx, res.Rows)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	logger.Info("import finished",
		zap.Int("imported", n),
		zap.Int("skipped", len(res.Errors)),
	)
}
