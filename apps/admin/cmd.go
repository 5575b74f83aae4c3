package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	usrRepo  user.Repository
	planRepo plan.Repository
	actRepo  activity.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - update or create a user. The password will be prompted next.")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  setplan -student USERNAME|EMAIL -plan PLAN - put a student on a plan")
	fmt.Println("  addactivity -kind KIND -title TITLE [-date DATE -from CLOCK -to CLOCK] - create an activity, window in UTC")
	fmt.Println("  migrate COMMAND [args] - run DB migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserIsAdmin := addUserCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	setPlanCmd := flag.NewFlagSet("setplan", flag.ExitOnError)
	setPlanStudent := setPlanCmd.String("student", "", "The student's username or email.")
	setPlanPlan := setPlanCmd.String("plan", "", "The plan name.")

	addActivityCmd := flag.NewFlagSet("addactivity", flag.ExitOnError)
	addActivityKind := addActivityCmd.String("kind", "", "The activity kind.")
	addActivityTitle := addActivityCmd.String("title", "", "The activity title.")
	addActivityDate := addActivityCmd.String("date", "", "The window date (2006-01-02).")
	addActivityFrom := addActivityCmd.String("from", "", "The opening clock (15:04).")
	addActivityTo := addActivityCmd.String("to", "", "The closing clock (15:04).")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" && *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserIsAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "setplan":
		if err := setPlanCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setPlanStudent == "" || *setPlanPlan == "" {
			setPlanCmd.Usage()
			return errHelp
		}
		return cli.setPlan(*setPlanStudent, *setPlanPlan)
	case "addactivity":
		if err := addActivityCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addActivityKind == "" || *addActivityTitle == "" {
			addActivityCmd.Usage()
			return errHelp
		}
		return cli.addActivity(*addActivityKind, *addActivityTitle, *addActivityDate, *addActivityFrom, *addActivityTo)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
