package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/trezcool/montree/apps/api/echo"
	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
	"github.com/trezcool/montree/services/logger"
	"github.com/trezcool/montree/storage/database"
	"github.com/trezcool/montree/storage/database/sqlboiler"
	"github.com/trezcool/montree/storage/database/sqlx"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run() error {
	conf, err := core.NewConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	// set up logger
	zlog, err := logsvc.NewZap(conf)
	if err != nil {
		return errors.Wrap(err, "building zap logger")
	}
	logger := logsvc.NewRollbarLogger(zlog, conf)
	logger.Enable(conf.RollbarToken != "" && !conf.Debug)
	defer logger.Sync()

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		return err
	}

	// set up services
	xdb := sqlxrepos.NewDB(db, conf.Database.Engine)
	curSvc, err := curriculum.NewService(
		curriculum.Repositories{
			Catalog:     sqlxrepos.NewCatalogRepository(xdb),
			Assignments: sqlxrepos.NewAssignmentRepository(xdb),
			Progress:    boiledrepos.NewProgressRepository(db, conf.Database.Engine),
			Synonyms:    sqlxrepos.NewSynonymRepository(xdb),
		},
		curriculum.NewOptions(conf.Reconcile),
		logger,
	)
	if err != nil {
		return errors.Wrap(err, "creating curriculum service")
	}

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address(),
		Debug:          conf.Debug,
		TestMode:       conf.TestMode,
		DisableReqLogs: conf.Server.DisableReqLogs,
		SecretKey:      conf.SecretKey,
		Logger:         logger,
		CurriculumSvc:  curSvc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening", "address", conf.Server.Address())
		serverErrors <- app.Start()
	}()

	select {
	case err = <-serverErrors:
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err = app.Stop(sctx); err != nil {
			return errors.Wrap(err, "stopping server")
		}
	}
	return nil
}
