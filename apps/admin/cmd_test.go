package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/mentorship"
	identitysvc "github.com/CovEducation/Website-sub000/services/identity"
	"github.com/CovEducation/Website-sub000/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	env := testutil.NewEnv()
	out := new(bytes.Buffer)
	return &commandLine{
		conf:          env.Conf,
		usrSvc:        env.UserSvc,
		mentorshipSvc: env.MentorshipSvc,
		tokens:        identitysvc.NewJWTService(env.Conf),
		openDB:        func() (*sql.DB, error) { return nil, nil },
		out:           out,
		errOut:        new(bytes.Buffer),
	}, env, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_reviews", "sql"}},
	})

	cli.openDB = func() (*sql.DB, error) { return nil, fmt.Errorf("migrations need the postgres engine (got inmem)") }
	runCLITests(t, cli, []cliTest{
		{name: "not postgres", args: []string{"migrate", "up"}, wantErrStr: "migrations need the postgres engine (got inmem)"},
	})
}

func Test_commandLine_addMentor(t *testing.T) {
	cli, env, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addmentor"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"addmentor", "-lol"}, wantErr: errHelp},
		{name: "no subjects", args: []string{"addmentor", "-uid", "m1"}, wantErr: errHelp},
		{
			name:       "bad grade",
			args:       []string{"addmentor", "-uid", "m1", "-subjects", "math", "-grades", "7,lol"},
			wantErrStr: "grade must be a number (got 'lol')",
		},
		{
			name: "register",
			args: []string{"addmentor", "-uid", "m1", "-name", "Ada", "-email", "ada@test.cd", "-subjects", "Math, Physics", "-grades", "6,7"},
		},
	})

	acc, err := env.UserSvc.GetAccount(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetAccount() failed: %v", err)
	}
	if !acc.IsMentor() || acc.Mentor.Name != "Ada" {
		t.Errorf("GetAccount() = %+v; want mentor Ada", acc)
	}
	if got := strings.Join(acc.Mentor.Subjects, ","); got != "math,physics" {
		t.Errorf("mentor subjects = %s; want math,physics", got)
	}
}

func Test_commandLine_mentorships(t *testing.T) {
	cli, env, out := setup(t)
	ctx := context.Background()

	mentor := testutil.CreateMentor(t, env.UserSvc, "mentor", "Mentor")
	parent := testutil.CreateParent(t, env.UserSvc, "parent", "Parent")
	student := testutil.CreateStudent(t, env.UserSvc, parent.ID, "Student")
	m, err := env.MentorshipSvc.SendRequest(ctx, mentorship.NewRequest{
		Mentor:  core.Ref(mentor.ID),
		Parent:  core.Ref(parent.ID),
		Student: core.Ref(student.ID),
		Message: "Hi",
	})
	if err != nil {
		t.Fatalf("SendRequest() failed: %v", err)
	}

	runCLITests(t, cli, []cliTest{{name: "no user", args: []string{"mentorships"}, wantErr: errHelp}})
	runCLITests(t, cli, []cliTest{{name: "list", args: []string{"mentorships", "-user", student.ID}}})

	var got []mentorship.Mentorship
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != m.ID {
		t.Errorf("mentorships = %+v; want [%s]", got, m.ID)
	}

	out.Reset()
	cli.isTerminal = true
	runCLITests(t, cli, []cliTest{{name: "table", args: []string{"mentorships", "-user", mentor.ID}}})
	if !strings.Contains(out.String(), m.ID) || !strings.Contains(out.String(), "PENDING") {
		t.Errorf("table output = %s; want %s PENDING", out.String(), m.ID)
	}
}

func Test_commandLine_archive(t *testing.T) {
	cli, env, _ := setup(t)
	ctx := context.Background()

	mentor := testutil.CreateMentor(t, env.UserSvc, "mentor", "Mentor")
	parent := testutil.CreateParent(t, env.UserSvc, "parent", "Parent")
	student := testutil.CreateStudent(t, env.UserSvc, parent.ID, "Student")
	m, err := env.MentorshipSvc.SendRequest(ctx, mentorship.NewRequest{
		Mentor:  core.Ref(mentor.ID),
		Parent:  core.Ref(parent.ID),
		Student: core.Ref(student.ID),
		Message: "Hi",
	})
	if err != nil {
		t.Fatalf("SendRequest() failed: %v", err)
	}

	runCLITests(t, cli, []cliTest{
		{name: "no id", args: []string{"archive"}, wantErr: errHelp},
		{name: "unknown id", args: []string{"archive", "-id", "lol"}, wantErr: mentorship.ErrNotFound},
		{name: "pending", args: []string{"archive", "-id", m.ID}, wantErr: mentorship.ErrNotActive},
	})

	if _, err = env.MentorshipSvc.AcceptRequest(ctx, m.ID); err != nil {
		t.Fatalf("AcceptRequest() failed: %v", err)
	}
	runCLITests(t, cli, []cliTest{{name: "active", args: []string{"archive", "-id", m.ID}}})

	got, err := env.MentorshipSvc.GetMentorship(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMentorship() failed: %v", err)
	}
	if got.State != mentorship.StateArchived || got.EndDate == nil {
		t.Errorf("mentorship = %+v; want archived with an end date", got)
	}
}

func Test_commandLine_token(t *testing.T) {
	cli, _, out := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no uid", args: []string{"token"}, wantErr: errHelp},
		{name: "mint", args: []string{"token", "-uid", "u1", "-email", "u1@test.cd"}},
	})

	if usage := cli.errOut.(*bytes.Buffer).String(); !strings.Contains(usage, "Usage of token") {
		t.Errorf("errOut = %q; want the token usage", usage)
	}
	id, err := identitysvc.NewJWTService(cli.conf).Verify(context.Background(), strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if id.UID != "u1" || id.Email != "u1@test.cd" {
		t.Errorf("Verify() = %+v; want u1", id)
	}
}
