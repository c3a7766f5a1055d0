package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type calendarBuilder interface {
	Build(ctx context.Context, usr user.User) calendar.View
}

type commandLine struct {
	usrSvc      user.ServiceInterface
	calendarSvc calendarBuilder
	migrateFunc func(ctx context.Context) ([]string, error)
	out         io.Writer
	pretty      bool
	calName     string
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - create the database indexes")
	fmt.Println("  adduser -googleid ID -name NAME -email EMAIL - add or update a user; the Google access token is prompted next")
	fmt.Println("  users - list users")
	fmt.Println("  events -googleid ID - list a user's events")
	fmt.Println("  addevent -googleid ID -title TITLE -date DATE [-description TEXT] [-allday] - add an event")
	fmt.Println("  deleteevent -googleid ID -title TITLE -date DATE - delete the events matching title and date")
	fmt.Println("  calendar -googleid ID [-ics] - print a user's merged calendar")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	adduserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	adduserID := adduserCmd.String("googleid", "", "The user's Google account id.")
	adduserName := adduserCmd.String("name", "", "The user's display name.")
	adduserEmail := adduserCmd.String("email", "", "The user's email.")

	eventsCmd := flag.NewFlagSet("events", flag.ContinueOnError)
	eventsID := eventsCmd.String("googleid", "", "The user's Google account id.")

	addeventCmd := flag.NewFlagSet("addevent", flag.ContinueOnError)
	addeventID := addeventCmd.String("googleid", "", "The user's Google account id.")
	addeventTitle := addeventCmd.String("title", "", "The event title (3 to 100 characters).")
	addeventDesc := addeventCmd.String("description", "", "The event description.")
	addeventDate := addeventCmd.String("date", "", "YYYY-MM-DD for an all-day event, or an RFC 3339 date-time.")
	addeventAllDay := addeventCmd.Bool("allday", false, "Mark a timed event as all-day.")

	deleteeventCmd := flag.NewFlagSet("deleteevent", flag.ContinueOnError)
	deleteeventID := deleteeventCmd.String("googleid", "", "The user's Google account id.")
	deleteeventTitle := deleteeventCmd.String("title", "", "The exact title of the events to delete.")
	deleteeventDate := deleteeventCmd.String("date", "", "The exact date of the events to delete.")

	calendarCmd := flag.NewFlagSet("calendar", flag.ContinueOnError)
	calendarID := calendarCmd.String("googleid", "", "The user's Google account id.")
	calendarICS := calendarCmd.Bool("ics", false, "Print the calendar as iCalendar instead of JSON.")

	switch args[1] {
	case "migrate":
		return cli.migrate(ctx)

	case "adduser":
		if err := adduserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *adduserID == "" || *adduserEmail == "" {
			adduserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter access token (optional):")
		token, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		return cli.addUser(ctx, user.Profile{GoogleID: *adduserID, Name: *adduserName, Email: *adduserEmail, AccessToken: string(token)})

	case "users":
		return cli.listUsers(ctx)

	case "events":
		if err := eventsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *eventsID == "" {
			eventsCmd.Usage()
			return errHelp
		}
		return cli.listEvents(ctx, *eventsID)

	case "addevent":
		if err := addeventCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addeventID == "" {
			addeventCmd.Usage()
			return errHelp
		}
		ne := user.NewEvent{Title: *addeventTitle, Description: *addeventDesc, Date: *addeventDate}
		if *addeventAllDay {
			ne.AllDay = addeventAllDay
		}
		return cli.addEvent(ctx, *addeventID, ne)

	case "deleteevent":
		if err := deleteeventCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteeventID == "" {
			deleteeventCmd.Usage()
			return errHelp
		}
		return cli.deleteEvent(ctx, *deleteeventID, user.DeleteEvent{Title: *deleteeventTitle, Date: *deleteeventDate})

	case "calendar":
		if err := calendarCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *calendarID == "" {
			calendarCmd.Usage()
			return errHelp
		}
		return cli.printCalendar(ctx, *calendarID, *calendarICS)

	default:
		cli.printUsage()
		return errHelp
	}
}

// print writes v as JSON, indented when the output is a terminal.
func (cli *commandLine) print(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	if cli.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
