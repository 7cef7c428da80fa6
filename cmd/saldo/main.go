package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/saldo-fin/saldo/internal/config"
	"github.com/saldo-fin/saldo/internal/etl"
	"github.com/saldo-fin/saldo/internal/logger"
	"github.com/saldo-fin/saldo/internal/metadata"
	"github.com/saldo-fin/saldo/internal/normalize"
	"github.com/saldo-fin/saldo/internal/rules"
	"github.com/saldo-fin/saldo/internal/store"
	"github.com/saldo-fin/saldo/internal/ui"
)

const version = "0.1.0"

var (
	versionFlag = flag.Bool("version", false, "Show version")

	configFile = flag.String("config", "", "YAML configuration file")
	dataDir    = flag.String("data", "data", "Data directory (metadata/, raw/, store)")
	storePath  = flag.String("store", "", "Canonical store path (overrides config)")
	backend    = flag.String("backend", "", "Store backend: csv or sqlite (overrides config)")
	rulesFile  = flag.String("rules", "", "Category rules file (default: embedded rules)")
	dryRun     = flag.Bool("dry-run", false, "Run ingestion without writing the store")
	verbose    = flag.Bool("verbose", false, "Show debug logs and per-row skip details")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `saldo - transaction ingestion for personal finance data

Usage:
  saldo [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Ingest everything under ./data
  saldo

  # Custom data directory with a SQLite store
  saldo -data ~/finance -backend sqlite -store ~/finance/store.db

  # See what would change without writing
  saldo -dry-run -verbose

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("saldo version %s\n", version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.New(*verbose)

	cfg := config.Default(*dataDir)
	if *configFile != "" {
		loaded, err := config.Load(*configFile, *dataDir)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *rulesFile != "" {
		cfg.RulesPath = *rulesFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ui.Header("Saldo Transaction Ingestion")
	ui.Step(1, 4, "Loading metadata")

	catalog, err := metadata.Load(cfg.MetadataDir)
	if err != nil {
		return err
	}
	result := catalog.Validate()
	for _, w := range result.Warnings {
		ui.Warning(fmt.Sprintf("%s %s [%s]: %s", w.Entity, w.ID, w.Field, w.Message))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			ui.Error(fmt.Sprintf("%s %s [%s]: %s", e.Entity, e.ID, e.Field, e.Message))
		}
		return fmt.Errorf("metadata validation failed with %d errors", len(result.Errors))
	}
	ui.Success(fmt.Sprintf("Loaded %d accounts, %d categories",
		len(catalog.Accounts()), len(catalog.Categories())))

	ui.Step(2, 4, "Loading category rules")
	var joiner normalize.Joiner
	if cfg.RulesPath != "" {
		engine, err := rules.LoadFromFile(cfg.RulesPath, catalog)
		if err != nil {
			return err
		}
		joiner = engine
	} else if engine, err := rules.LoadEmbedded(catalog); err != nil {
		// The embedded rules name categories this catalog may not have.
		// Ingestion still works, records just stay uncategorized.
		ui.Warning(fmt.Sprintf("category rules disabled: %v", err))
		log.Warn().Err(err).Msg("default rules do not match catalog, skipping categorization")
	} else {
		joiner = engine
	}

	ui.Step(3, 4, "Opening canonical store")
	var persister store.Persister
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			return err
		}
		defer db.Close()
		persister = db
	default:
		persister = store.NewCSVFile(cfg.StorePath)
	}

	ui.Step(4, 4, "Ingesting raw exports")
	pipeline := etl.New(catalog, normalize.New(joiner), persister, cfg.RawDir, *dryRun, log)
	report, err := pipeline.Run(time.Now().UTC())
	if err != nil {
		return err
	}

	printReport(report)
	if *dryRun {
		ui.Info("dry run: store not written")
	}
	return nil
}

func printReport(report *etl.Report) {
	fmt.Println()
	ui.Success(fmt.Sprintf("Ingested %d records across %d accounts (store: %d records)",
		report.Ingested, len(report.Accounts), report.StoreSize))

	for _, acc := range report.Accounts {
		ui.Info(fmt.Sprintf("account %s: %d files, %d ingested, %d skipped",
			acc.AccountID, acc.Files, acc.Ingested, acc.Skipped))
	}

	if len(report.Skipped) > 0 {
		ui.Warning(fmt.Sprintf("%d rows skipped", len(report.Skipped)))
		if *verbose {
			for _, row := range report.Skipped {
				ui.YellowText(fmt.Sprintf("  %s %s: %s (%s=%q)",
					row.AccountID, row.File, row.Reason, row.Column, row.Value))
			}
		} else {
			ui.Info("Run with -verbose to see skipped rows")
		}
	}

	for _, failed := range report.FailedFiles {
		ui.Warning(fmt.Sprintf("file %s skipped: %v", failed.File, failed.Err))
	}

	for _, failed := range report.FailedAccounts {
		ui.Error(fmt.Sprintf("account %s failed: %v", failed.AccountID, failed.Err))
	}
}
