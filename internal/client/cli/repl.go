package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	ListTransactions(ctx context.Context) error
	AddTransaction(ctx context.Context) error
	DeleteTransaction(ctx context.Context, id string) error
	Insights(ctx context.Context) error

	ListSchedules(ctx context.Context) error
	AddSchedule(ctx context.Context) error
	EditSchedule(ctx context.Context, id string) error
	DeleteSchedule(ctx context.Context, id string) error

	Calculate(ctx context.Context) error
	ListGoals(ctx context.Context) error
	AddGoal(ctx context.Context) error
	DeleteGoal(ctx context.Context, id string) error

	ShowProfile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	UploadAvatar(ctx context.Context, path string) error
	DownloadAvatar(ctx context.Context, path string) error
}

const (
	helpSignedOut = "Available commands: register, login, calc, goals, addgoal, delgoal <id>, exit"
	helpSignedIn  = "Available commands:\n" +
		"  (t)x, addtx, deltx <id>, insights\n" +
		"  (s)chedules, addschedule, editschedule <id>, delschedule <id>\n" +
		"  calc, goals, addgoal, delgoal <id>\n" +
		"  profile, editprofile, avatar upload|download <file>\n" +
		"  whoami, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// Errors returned by handlers are shown to the user and the loop goes on. It
// returns on EOF, "exit"/"quit" or when ctx ends.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("sp %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func arg(args []string, i int, usage string) (string, error) {
	if len(args) <= i {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[i], nil
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpSignedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "calc":
		return a.Calculate(ctx)
	case "goals":
		return a.ListGoals(ctx)
	case "addgoal":
		return a.AddGoal(ctx)
	case "delgoal":
		id, err := arg(args, 0, "delgoal <id>")
		if err != nil {
			return err
		}
		return a.DeleteGoal(ctx, id)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "whoami", "t", "tx", "addtx", "deltx", "insights", "s", "schedules",
			"addschedule", "editschedule", "delschedule", "profile", "editprofile", "avatar":
			return errors.New("please login first")
		}
		return fmt.Errorf("unknown command: %s", cmd)
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "t", "tx":
		return a.ListTransactions(ctx)
	case "addtx":
		return a.AddTransaction(ctx)
	case "deltx":
		id, err := arg(args, 0, "deltx <id>")
		if err != nil {
			return err
		}
		return a.DeleteTransaction(ctx, id)
	case "insights":
		return a.Insights(ctx)
	case "s", "schedules":
		return a.ListSchedules(ctx)
	case "addschedule":
		return a.AddSchedule(ctx)
	case "editschedule":
		id, err := arg(args, 0, "editschedule <id>")
		if err != nil {
			return err
		}
		return a.EditSchedule(ctx, id)
	case "delschedule":
		id, err := arg(args, 0, "delschedule <id>")
		if err != nil {
			return err
		}
		return a.DeleteSchedule(ctx, id)
	case "profile":
		return a.ShowProfile(ctx)
	case "editprofile":
		return a.EditProfile(ctx)
	case "avatar":
		path, err := arg(args, 1, "avatar upload|download <file>")
		if err != nil {
			return err
		}
		switch args[0] {
		case "upload":
			return a.UploadAvatar(ctx, path)
		case "download":
			return a.DownloadAvatar(ctx, path)
		}
		return errors.New("usage: avatar upload|download <file>")
	}
	return fmt.Errorf("unknown command: %s", cmd)
}
