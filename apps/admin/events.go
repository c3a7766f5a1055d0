package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/user"
)

func (cli *commandLine) listEvents(ctx context.Context, googleID string) error {
	events, err := cli.usrSvc.GetEvents(ctx, googleID)
	if err != nil {
		return err
	}
	return cli.print(events)
}

func (cli *commandLine) addEvent(ctx context.Context, googleID string, ne user.NewEvent) error {
	evt, err := cli.usrSvc.AddEvent(ctx, googleID, ne)
	if err != nil {
		return err
	}
	return cli.print(evt)
}

func (cli *commandLine) deleteEvent(ctx context.Context, googleID string, de user.DeleteEvent) error {
	events, err := cli.usrSvc.DeleteEvent(ctx, googleID, de)
	if err != nil {
		return err
	}
	return cli.print(events)
}

func (cli *commandLine) printCalendar(ctx context.Context, googleID string, ics bool) error {
	usr, err := cli.usrSvc.GetByGoogleID(ctx, googleID)
	if err != nil {
		return err
	}
	view := cli.calendarSvc.Build(ctx, usr)
	if ics {
		_, err = fmt.Fprint(cli.out, calendar.ExportICS(view, cli.calName, time.Now()))
		return err
	}
	return cli.print(view)
}
