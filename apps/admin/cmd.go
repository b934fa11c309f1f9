package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
)

var errHelp = errors.New("help provided")

type tokenGenerator interface {
	GenerateToken(id core.Identity) (string, error)
}

type commandLine struct {
	conf          *core.Config
	usrSvc        *user.Service
	mentorshipSvc *mentorship.Service
	tokens        tokenGenerator
	openDB        func() (*sql.DB, error)
	out           io.Writer // command results
	errOut        io.Writer // usage and help
	isTerminal    bool
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.errOut, "Usage:")
	fmt.Fprintln(cli.errOut, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) against the postgres database")
	fmt.Fprintln(cli.errOut, "  addmentor -uid UID -name NAME -email EMAIL -subjects S1,S2 [-grades 6,7] [-phone E164] [-bio BIO] - register a mentor")
	fmt.Fprintln(cli.errOut, "  mentorships -user ID - list a mentor's, parent's or student's mentorships")
	fmt.Fprintln(cli.errOut, "  archive -id MENTORSHIP_ID - archive an active mentorship")
	fmt.Fprintln(cli.errOut, "  token -uid UID [-email EMAIL] [-name NAME] - mint an API token (jwt identity provider only)")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.errOut)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addMentorCmd := cli.newFlagSet("addmentor")
	addMentorUID := addMentorCmd.String("uid", "", "The mentor's identity provider uid.")
	addMentorName := addMentorCmd.String("name", "", "The mentor's name.")
	addMentorEmail := addMentorCmd.String("email", "", "The mentor's email.")
	addMentorPhone := addMentorCmd.String("phone", "", "The mentor's phone number, E.164 formatted.")
	addMentorSubjects := addMentorCmd.String("subjects", "", "Comma separated subjects taught.")
	addMentorGrades := addMentorCmd.String("grades", "", "Comma separated grade levels taught.")
	addMentorBio := addMentorCmd.String("bio", "", "A short bio.")

	mentorshipsCmd := cli.newFlagSet("mentorships")
	mentorshipsUser := mentorshipsCmd.String("user", "", "A mentor, parent or student id.")

	archiveCmd := cli.newFlagSet("archive")
	archiveID := archiveCmd.String("id", "", "The mentorship id.")

	tokenCmd := cli.newFlagSet("token")
	tokenUID := tokenCmd.String("uid", "", "The identity uid.")
	tokenEmail := tokenCmd.String("email", "", "The identity email.")
	tokenName := tokenCmd.String("name", "", "The identity name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "addmentor":
		if err := addMentorCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addMentorUID == "" || *addMentorSubjects == "" {
			addMentorCmd.Usage()
			return errHelp
		}
		grades, err := parseGrades(*addMentorGrades)
		if err != nil {
			return err
		}
		return cli.addMentor(ctx, *addMentorUID, user.NewMentor{
			Name:        *addMentorName,
			Email:       *addMentorEmail,
			Phone:       *addMentorPhone,
			Subjects:    strings.Split(*addMentorSubjects, ","),
			GradeLevels: grades,
			Bio:         *addMentorBio,
		})

	case "mentorships":
		if err := mentorshipsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *mentorshipsUser == "" {
			mentorshipsCmd.Usage()
			return errHelp
		}
		return cli.listMentorships(ctx, *mentorshipsUser)

	case "archive":
		if err := archiveCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *archiveID == "" {
			archiveCmd.Usage()
			return errHelp
		}
		return cli.archive(ctx, *archiveID)

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenUID == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(core.Identity{UID: *tokenUID, Email: *tokenEmail, Name: *tokenName})

	default:
		cli.printUsage()
		return errHelp
	}
}

func parseGrades(s string) ([]int, error) {
	var grades []int
	for _, g := range core.CleanStrings(strings.Split(s, ",")) {
		grade, err := strconv.Atoi(g)
		if err != nil {
			return nil, fmt.Errorf("grade must be a number (got '%s')", g)
		}
		grades = append(grades, grade)
	}
	return grades, nil
}
