package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
	dummydb "github.com/appredator/backend/storage/database/dummy"
)

var (
	usrRepo  user.Repository
	planRepo plan.Repository
	actRepo  activity.Repository
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	planRepo = dummydb.NewPlanRepository(db)
	actRepo = dummydb.NewActivityRepository(db)

	// start CLI
	return &commandLine{
		db:       new(sqlx.DB),
		usrRepo:  usrRepo,
		planRepo: planRepo,
		actRepo:  actRepo,
	}
}

func createUser(t *testing.T, uname, email, pwd string) user.User {
	usr := user.User{
		Username: uname,
		Email:    email,
		IsActive: true,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addActivity(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"addactivity"}, wantErr: errHelp},
		{name: "missing title", args: []string{"addactivity", "-kind", "essay"}, wantErr: errHelp},
		{name: "unknown kind", args: []string{"addactivity", "-kind", "karaoke", "-title", "Sing-along"}, wantErrStr: "activitykind"},
		{name: "window without date", args: []string{"addactivity", "-kind", "essay", "-title", "June theme", "-from", "08:00"}, wantErrStr: "combining"},
		{name: "bad clock", args: []string{"addactivity", "-kind", "essay", "-title", "June theme", "-date", "2025-06-01", "-from", "25:99"}, wantErrStr: "combining"},
		{name: "no window", args: []string{"addactivity", "-kind", "exercise", "-title", "Comma drills"}},
		{name: "ok", args: []string{"addactivity", "-kind", "essay", "-title", "June theme", "-date", "2025-06-01", "-from", "08:00", "-to", "10:00"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("cli.run() error = %v, want it to mention %q", err, tt.wantErrStr)
				}
			default:
				if err != nil {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}

	acts, err := actRepo.FilterActivities(context.Background(), activity.QueryFilter{Search: "June theme"})
	if err != nil {
		t.Fatalf("FilterActivities() failed: %v", err)
	}
	if len(acts) != 1 {
		t.Fatalf("got %d activities, want 1", len(acts))
	}
	act := acts[0]
	wantStart := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if act.StartAt == nil || !act.StartAt.Equal(wantStart) {
		t.Errorf("StartAt = %v, want %v", act.StartAt, wantStart)
	}
	if act.EndAt == nil || !act.EndAt.Equal(wantEnd) {
		t.Errorf("EndAt = %v, want %v", act.EndAt, wantEnd)
	}
	if !act.Active {
		t.Error("expected the activity to be created active")
	}
}

func Test_commandLine_setPlan(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "hero", "hero@test.cd", "")

	tests := []cliTest{
		{name: "no args", args: []string{"setplan"}, wantErr: errHelp},
		{name: "missing plan", args: []string{"setplan", "-student", usr.Username}, wantErr: errHelp},
		{name: "unknown plan", args: []string{"setplan", "-student", usr.Username, "-plan", "platinum"}, wantErr: plan.ErrUnknownPlan},
		{name: "unknown student", args: []string{"setplan", "-student", "lol", "-plan", "starter"}, wantErr: user.ErrNotFound},
		{name: "ok", args: []string{"setplan", "-student", usr.Username, "-plan", "starter"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	sub, err := planRepo.GetSubscription(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetSubscription() failed: %v", err)
	}
	if sub.Plan != plan.PlanStarter || !sub.Active {
		t.Errorf("subscription not set as expected: %+v", sub)
	}
}
