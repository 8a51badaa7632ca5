// Package main runs the banking ledger API server and its monthly accrual
// scheduler.
package main

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/bankofkat/ledger/cmd/httpserver"
	"github.com/bankofkat/ledger/internal/accrualservice"
	"github.com/bankofkat/ledger/internal/ledgerrepo"
	"github.com/bankofkat/ledger/internal/middleware"
	"github.com/bankofkat/ledger/pkg/configpkg"
	"github.com/bankofkat/ledger/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	if err := dbpkg.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("cannot migrate database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	accrualService := accrualservice.New(ledgerrepo.NewStore(db), config.SweepWorkers)
	ctx := logger.WithContext(context.Background())

	// The cron specs must fire once per period: running a sweep twice in the
	// same month double-charges.
	scheduler := cron.New()

	if _, err := scheduler.AddFunc(config.InterestSchedule, func() {
		if err := accrualService.PayMonthlyInterest(ctx); err != nil {
			logger.Error().Err(err).Msg("interest sweep failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("cannot schedule interest sweep")
	}

	if _, err := scheduler.AddFunc(config.FeesSchedule, func() {
		if err := accrualService.ChargeMonthlyFees(ctx); err != nil {
			logger.Error().Err(err).Msg("fees sweep failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("cannot schedule fees sweep")
	}

	scheduler.Start()
	defer scheduler.Stop()

	logger.Info().Msg("BANK LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
