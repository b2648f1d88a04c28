// Command export writes a month of reservations and room occupancy to an
// xlsx workbook.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"hebergement/internal/audit"
	"hebergement/internal/config"
	"hebergement/internal/database"
)

func main() {
	month := flag.String("month", time.Now().AddDate(0, -1, 0).Format("2006-01"), "month to export, YYYY-MM")
	out := flag.String("out", "", "output file (default reservations-<month>.xlsx)")
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("HEBERGEMENT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	r, err := audit.MonthRange(*month)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid month")
	}
	if *out == "" {
		*out = "reservations-" + *month + ".xlsx"
	}

	db, err := database.Open(cfg.Database, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatal().Err(err).Msg("create output file")
	}
	defer f.Close()

	summary, err := audit.NewExporter(db, &logger).ExportMonth(ctx, r, f)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(*out)
		logger.Fatal().Err(err).Msg("export failed")
	}
	logger.Info().
		Str("file", *out).
		Int("reservations", summary.Reservations).
		Int("cancelled", summary.Cancelled).
		Msg("Export done")
}
