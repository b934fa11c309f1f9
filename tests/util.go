package testutil

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
	emailsvc "github.com/CovEducation/Website-sub000/services/email"
	logsvc "github.com/CovEducation/Website-sub000/services/logger"
	notifysvc "github.com/CovEducation/Website-sub000/services/notify"
	smssvc "github.com/CovEducation/Website-sub000/services/sms"
	inmemdb "github.com/CovEducation/Website-sub000/storage/database/inmem"
)

type SMSRecorder interface {
	core.SMSService
	SentMessages() []core.SMSMessage
}

// Env wires the services on top of the in-memory storage, with silent delivery mocks.
type Env struct {
	Conf       *core.Config
	DB         *inmemdb.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     *logsvc.Recorder
	Mail       *emailsvc.ConsoleServiceMock
	SMS        SMSRecorder

	Mentors     user.MentorRepository
	Parents     user.ParentRepository
	Students    user.StudentRepository
	Mentorships mentorship.Repository

	UserSvc       *user.Service
	MentorshipSvc *mentorship.Service
}

// NewConfig returns the TEST configuration.
func NewConfig() *core.Config {
	_ = os.Setenv("ENV", "TEST")
	return core.NewConfig()
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewEnv sets up a fresh Env. notifier defaults to the email/sms Dispatcher.
func NewEnv(notifier ...core.Notifier) *Env {
	conf := NewConfig()
	validate, translator := NewValidator()
	logger := logsvc.NewRecorder()
	db := inmemdb.NewDB()

	env := &Env{
		Conf:        conf,
		DB:          db,
		Validate:    validate,
		Translator:  translator,
		Logger:      logger,
		Mail:        emailsvc.NewConsoleServiceMock(conf, logger),
		SMS:         smssvc.NewConsoleServiceMock(),
		Mentors:     inmemdb.NewMentorRepository(db),
		Parents:     inmemdb.NewParentRepository(db),
		Students:    inmemdb.NewStudentRepository(db),
		Mentorships: inmemdb.NewMentorshipRepository(db),
	}

	var n core.Notifier = notifysvc.NewDispatcher(conf, env.Mail, env.SMS)
	if len(notifier) > 0 {
		n = notifier[0]
	}
	env.UserSvc = user.NewService(env.Mentors, env.Parents, env.Students, validate)
	env.MentorshipSvc = mentorship.NewService(env.Mentorships, env.Mentors, env.Parents, env.Students, n, validate, logger)
	return env
}

func CreateMentor(t *testing.T, svc *user.Service, uid, name string, subjects ...string) user.Mentor {
	if len(subjects) == 0 {
		subjects = []string{"math"}
	}
	mentor, err := svc.RegisterMentor(context.Background(), uid, user.NewMentor{
		Name:        name,
		Email:       uid + "@mentors.test",
		Subjects:    subjects,
		GradeLevels: []int{6, 7, 8},
	})
	if err != nil {
		t.Fatalf("CreateMentor() failed: %v", err)
	}
	return mentor
}

func CreateParent(t *testing.T, svc *user.Service, uid, name string, phone ...string) user.Parent {
	np := user.NewParent{
		Name:  name,
		Email: uid + "@parents.test",
	}
	if len(phone) > 0 {
		np.Phone = phone[0]
		np.ContactPreference = core.ChannelSMS
	}
	parent, err := svc.RegisterParent(context.Background(), uid, np)
	if err != nil {
		t.Fatalf("CreateParent() failed: %v", err)
	}
	return parent
}

func CreateStudent(t *testing.T, svc *user.Service, parentID, name string) user.Student {
	student, err := svc.AddStudent(context.Background(), parentID, user.NewStudent{
		Name:       name,
		GradeLevel: 7,
		Subjects:   []string{"math"},
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

// FixedClock returns a func yielding start, then start+step, start+2*step...
func FixedClock(start time.Time, step time.Duration) func() time.Time {
	var n int64
	return func() time.Time {
		i := atomic.AddInt64(&n, 1) - 1
		return start.Add(time.Duration(i) * step)
	}
}
