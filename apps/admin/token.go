package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

func (cli *commandLine) token(id core.Identity) error {
	if cli.conf.Identity.Provider != core.IdentityJWT {
		return errors.Errorf("tokens are issued by %s", cli.conf.Identity.Provider)
	}
	token, err := cli.tokens.GenerateToken(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
