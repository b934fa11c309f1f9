package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every message on a std logger.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

type person struct {
	id, name, email string
}

// splitArgs pulls the caller out of args.
// A registered user.Account wins over the bare core.Identity of a caller still signing up.
func splitArgs(args []interface{}) (p *person, rest []interface{}) {
	var fromIdentity *person
	rest = make([]interface{}, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case user.Account:
			if p == nil && a.ID != "" {
				p = &person{id: a.Role + ":" + a.ID, name: a.Name(), email: a.Email()}
			}
		case core.Identity:
			if fromIdentity == nil && a.UID != "" {
				fromIdentity = &person{id: "uid:" + a.UID, name: a.Name, email: a.Email}
			}
		default:
			rest = append(rest, arg)
		}
	}
	if p == nil {
		p = fromIdentity
	}
	return p, rest
}

// expected fmt: msg | error, map[string]interface{}, user.Account, core.Identity
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	p, rest := splitArgs(args)
	if p != nil {
		rollbar.SetPerson(p.id, p.name, p.email)
	} else {
		rollbar.ClearPerson()
	}
	return append([]interface{}{msg}, rest...)
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	p, rest := splitArgs(args)
	if p != nil {
		l.std.Printf("%s (%s)\n", msg, p.id)
	} else {
		l.std.Println(msg)
	}
	for _, arg := range rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
