package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	dig_container "github.com/CovEducation/Website-sub000/apps/api/di/dig"
	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
	identitysvc "github.com/CovEducation/Website-sub000/services/identity"
	"github.com/CovEducation/Website-sub000/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	code := 0
	err := dig_container.New().Invoke(func(
		conf *core.Config,
		closeStorage dig_container.StorageCloser,
		usrSvc *user.Service,
		mentorshipSvc *mentorship.Service,
	) {
		defer func() {
			if err := closeStorage(context.Background()); err != nil {
				logger.Printf("closing storage: %v", err)
			}
		}()

		cli := commandLine{
			conf:          conf,
			usrSvc:        usrSvc,
			mentorshipSvc: mentorshipSvc,
			tokens:        identitysvc.NewJWTService(conf),
			out:           os.Stdout,
			errOut:        os.Stderr,
			isTerminal:    term.IsTerminal(int(os.Stdout.Fd())),
			openDB: func() (*sql.DB, error) {
				if conf.Database.Engine != core.EnginePostgres {
					return nil, errors.Errorf("migrations need the %s engine (got %s)", core.EnginePostgres, conf.Database.Engine)
				}
				db, err := database.Open(conf)
				if err != nil {
					return nil, err
				}
				return db.DB, nil
			},
		}
		if err := cli.run(os.Args); err != nil {
			if err != errHelp {
				logger.Printf("\nerror: %s\n", err)
			}
			code = 1
		}
	})
	if err != nil {
		logger.Fatal(err)
	}
	os.Exit(code)
}
