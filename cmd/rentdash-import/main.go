package main

import (
	"context"
	"flag"
	"os"
	"time"

	"rentdash/internal/cli"
	applog "rentdash/internal/log"
	"rentdash/internal/services"
	"rentdash/internal/source/csvfile"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(applog.ComponentImport)

	file := flag.String("file", cfg.DatasetPath, "CSV file to import")
	timeout := flag.Duration("timeout", time.Minute, "maximum duration of the import")
	flag.Parse()

	ctx, stop := cli.SignalContext(logger)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.RefreshPublisher
	if amqpClient := cli.InitAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	start := time.Now()
	res, err := services.NewImportService(repo, publisher).Import(ctx, csvfile.New(*file))
	if err != nil {
		logger.Error("Import failed", applog.FieldError, err,
			applog.FieldOperation, applog.OpImport,
			"file", *file)
		os.Exit(1)
	}

	logger.Info("Import completed",
		applog.FieldOperation, applog.OpImport,
		applog.FieldSource, res.Source,
		applog.FieldRows, res.Rows,
		applog.FieldCities, res.Cities,
		"published", res.Published,
		"database", repo.Describe(),
		applog.FieldDuration, time.Since(start).Milliseconds())
}
