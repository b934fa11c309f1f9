package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"
)

func (cli *commandLine) listMentorships(ctx context.Context, userID string) error {
	ms, err := cli.mentorshipSvc.GetCurrentMentorships(ctx, userID)
	if err != nil {
		return err
	}
	if !cli.isTerminal {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(ms)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tMENTOR\tSTUDENT\tSTARTED\tSESSIONS")
	for _, m := range ms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", m.ID, m.State, m.MentorID, m.StudentID, formatDate(m.StartDate), len(m.Sessions))
	}
	return w.Flush()
}

func (cli *commandLine) archive(ctx context.Context, id string) error {
	m, err := cli.mentorshipSvc.ArchiveMentorship(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "mentorship %s archived on %s\n", m.ID, formatDate(m.EndDate))
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
