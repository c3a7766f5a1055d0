package main

import (
	"context"

	"github.com/trezcool/edutrack/core/user"
)

// addUser updates or creates a user.User the way a Google sign-in does.
func (cli *commandLine) addUser(ctx context.Context, p user.Profile) error {
	usr, err := cli.usrSvc.Login(ctx, p)
	if err != nil {
		return err
	}
	return cli.print(usr)
}

func (cli *commandLine) listUsers(ctx context.Context) error {
	users, err := cli.usrSvc.QueryAll(ctx)
	if err != nil {
		return err
	}
	if users == nil {
		users = []user.User{}
	}
	return cli.print(users)
}
