package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/CovEducation/Website-sub000/apps/api/echo"
	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
	emailsvc "github.com/CovEducation/Website-sub000/services/email"
	identitysvc "github.com/CovEducation/Website-sub000/services/identity"
	logsvc "github.com/CovEducation/Website-sub000/services/logger"
	notifysvc "github.com/CovEducation/Website-sub000/services/notify"
	smssvc "github.com/CovEducation/Website-sub000/services/sms"
	"github.com/CovEducation/Website-sub000/storage/database"
	inmemdb "github.com/CovEducation/Website-sub000/storage/database/inmem"
	mongorepos "github.com/CovEducation/Website-sub000/storage/database/mongo"
	sqlxrepos "github.com/CovEducation/Website-sub000/storage/database/sqlx"
)

const storageSetupTimeout = 30 * time.Second

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage is the set of repositories backing the services, along with a func releasing them.
	Storage struct {
		dig.Out
		Mentors     user.MentorRepository
		Parents     user.ParentRepository
		Students    user.StudentRepository
		Mentorships mentorship.Repository
		Close       StorageCloser
	}

	StorageCloser func(ctx context.Context) error
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	ctx, cancel := context.WithTimeout(context.Background(), storageSetupTimeout)
	defer cancel()

	st, err := setUpStorage(ctx, conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Database.Engine, err), err)
	}
	return st
}

func setUpStorage(ctx context.Context, conf *core.Config) (Storage, error) {
	switch conf.Database.Engine {
	case core.EngineInMem:
		db := inmemdb.NewDB()
		return Storage{
			Mentors:     inmemdb.NewMentorRepository(db),
			Parents:     inmemdb.NewParentRepository(db),
			Students:    inmemdb.NewStudentRepository(db),
			Mentorships: inmemdb.NewMentorshipRepository(db),
			Close:       func(context.Context) error { return nil },
		}, nil

	case core.EngineMongo:
		client, db, err := database.OpenMongo(ctx, conf)
		if err != nil {
			return Storage{}, err
		}
		if err = mongorepos.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return Storage{}, err
		}
		return Storage{
			Mentors:     mongorepos.NewMentorRepository(db),
			Parents:     mongorepos.NewParentRepository(db),
			Students:    mongorepos.NewStudentRepository(db),
			Mentorships: mongorepos.NewMentorshipRepository(db),
			Close:       client.Disconnect,
		}, nil

	case core.EnginePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return Storage{}, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return Storage{}, err
		}
		if err = database.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return Storage{}, err
		}
		return Storage{
			Mentors:     sqlxrepos.NewMentorRepository(db),
			Parents:     sqlxrepos.NewParentRepository(db),
			Students:    sqlxrepos.NewStudentRepository(db),
			Mentorships: sqlxrepos.NewMentorshipRepository(db),
			Close:       func(context.Context) error { return db.Close() },
		}, nil
	}
	return Storage{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newSMSService(conf *core.Config) core.SMSService {
	if conf.Debug || conf.Twilio.AccountSID == "" {
		return smssvc.NewConsoleService(conf)
	}
	return smssvc.NewTwilioService(conf)
}

func newNotifier(conf *core.Config, mailSvc core.EmailService, smsSvc core.SMSService) core.Notifier {
	return notifysvc.NewDispatcher(conf, mailSvc, smsSvc)
}

func newIdentityVerifier(conf *core.Config, logger core.Logger) core.IdentityVerifier {
	verifier, err := identitysvc.NewVerifier(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up identity provider: %v", err), err)
	}
	return verifier
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	verifier core.IdentityVerifier,
	usrSvc *user.Service,
	mentorshipSvc *mentorship.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.Deps{
		Conf:          conf,
		Logger:        logger,
		Identity:      verifier,
		UserSvc:       usrSvc,
		MentorshipSvc: mentorshipSvc,
		Validate:      validate,
		Translator:    translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newEmailService))
	must(c.Provide(newSMSService))
	must(c.Provide(newNotifier))
	must(c.Provide(newIdentityVerifier))
	must(c.Provide(user.NewService))
	must(c.Provide(mentorship.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
