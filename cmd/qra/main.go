package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/cli"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.qra/qra.db
	dbPath := os.Getenv("QRA_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".qra", "qra.db")
	}

	// Determine catalog file
	catalogPath := os.Getenv("QRA_CATALOG")
	if catalogPath == "" {
		// Check for ./catalog.yaml in current directory first (development)
		if stat, err := os.Stat("./catalog.yaml"); err == nil && !stat.IsDir() {
			catalogPath = "./catalog.yaml"
		} else {
			// Fall back to ~/.qra/catalog.yaml (production)
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			candidate := filepath.Join(home, ".qra", "catalog.yaml")
			if _, err := os.Stat(candidate); err == nil {
				catalogPath = candidate
			}
		}
	}

	// Load catalog when a file is available. Without one, selections
	// still work but every subcomponent is flagged as a catalog miss.
	var cat catalog.Catalog
	if catalogPath != "" {
		loaded, err := catalog.Load(catalogPath)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		cat = loaded
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Wire repositories and unit of work
	yearRepo := repository.NewSQLiteBusinessYearRepo(database, logger)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire services
	var observers []service.UseCaseObserver
	if os.Getenv("QRA_LOG_USECASES") == "1" {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	app := &cli.App{
		Allocations: service.NewAllocationService(yearRepo, cat, observers...),
		Export:      service.NewExportService(yearRepo, cat, uow, logger, observers...),
		Import:      service.NewImportService(yearRepo, cat, observers...),
		Stats:       service.NewStatsService(yearRepo, cat, logger),
	}

	// Detect interactive terminal for form-based editing.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
