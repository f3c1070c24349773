package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/result"
	logsvc "github.com/trezcool/vidyalaya/services/logger"
	"github.com/trezcool/vidyalaya/storage/database"
	inmemdb "github.com/trezcool/vidyalaya/storage/database/inmem"
	sqlxrepos "github.com/trezcool/vidyalaya/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger("ADMIN", conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	rl := logsvc.NewRollbarLogger(zl, conf)
	rl.Enable(false)
	logger = rl

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	result.InitValidators(validate, translator)

	cli := commandLine{out: os.Stdout}

	// set up storage
	var examRepo result.Repository
	if conf.StorageDriver == core.StorageMemory {
		examRepo = inmemdb.NewExamRepository(inmemdb.Open())
	} else {
		db, err := database.Open(conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()

		examRepo = sqlxrepos.NewExamRepository(db)
		cli.migrator = func(command string, args ...string) error {
			return database.Migrate(db, command, args...)
		}
	}
	cli.examSvc = result.NewService(examRepo, validate, logger)

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		rl.Sync()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
