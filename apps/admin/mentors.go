package main

import (
	"context"
	"fmt"

	"github.com/CovEducation/Website-sub000/core/user"
)

func (cli *commandLine) addMentor(ctx context.Context, uid string, nm user.NewMentor) error {
	mentor, err := cli.usrSvc.RegisterMentor(ctx, uid, nm)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "mentor %s registered (id %s)\n", mentor.Name, mentor.ID)
	return nil
}
