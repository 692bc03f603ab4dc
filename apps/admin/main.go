package main

import (
	"log"
	"os"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
	"github.com/trezcool/montree/services/logger"
	"github.com/trezcool/montree/storage/database"
	"github.com/trezcool/montree/storage/database/sqlboiler"
	"github.com/trezcool/montree/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	zlog, err := logsvc.NewZap(conf)
	errAndDie(err)
	logger := logsvc.NewRollbarLogger(zlog, conf)
	logger.Enable(conf.RollbarToken != "" && !conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

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
	errAndDie(err)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db,
		curSvc: curSvc,
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	logger.Sync()
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			log.Printf("error: %+v\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
