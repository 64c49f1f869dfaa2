package main

import (
	"context"
	"time"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:        name,
			Email:       email,
			AccessLevel: user.AccessStudent,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	if isAdmin {
		usr.AccessLevel = user.AccessAdmin
	}
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
