package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getInt = GetInt
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Full name (optional)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.auth.Register(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Email, u.ID)
	return nil
}
