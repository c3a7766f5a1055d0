package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/user"
	inmemdb "github.com/trezcool/edutrack/storage/database/inmem"
	"github.com/trezcool/edutrack/tests"
)

var usrRepo user.Repository

type noAssignments struct{}

func (noAssignments) ListAssignments(context.Context, string) ([]classroom.Assignment, error) {
	return nil, nil
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	validate, _ := testutil.NewValidator()
	usrSvc := user.NewService(usrRepo, validate)
	logger := new(testutil.Logger)

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		usrSvc:      usrSvc,
		calendarSvc: calendar.NewService(usrSvc, noAssignments{}, time.UTC, logger),
		migrateFunc: func(context.Context) ([]string, error) { return []string{"googleId_1"}, nil },
		out:         out,
		calName:     "EduTrack",
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want an error")
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "bad flag", args: []string{"events", "-lol"}, wantErr: errHelp},
	}
	runCLITests(t, cli, tests)
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, []cliTest{{name: "indexes", args: []string{"migrate"}}})
	if got := out.String(); got != "index googleId_1 ready\n" {
		t.Errorf("migrate output = %q", got)
	}

	cli.migrateFunc = func(context.Context) ([]string, error) { return nil, errNoMongo }
	runCLITests(t, cli, []cliTest{{name: "no mongo", args: []string{"migrate"}, wantErr: errNoMongo}})
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)

	type extra struct {
		token string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "id but no email", args: []string{"adduser", "-googleid", "g-1"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-googleid", "g-1", "-name", "Ada", "-email", "ada@test.cd"}, extra: extra{token: "tok-1"}},
		{name: "update", args: []string{"adduser", "-googleid", "g-1", "-name", "Ada L.", "-email", "ada@test.cd"}, extra: extra{token: "tok-2"}},
	}
	for _, tt := range tests {
		tt := tt
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.token), nil
			}
			return nil, nil
		}
		runCLITests(t, cli, []cliTest{tt})
	}

	usr, err := usrRepo.GetUserByGoogleID(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("GetUserByGoogleID() failed, %v", err)
	}
	if usr.Name != "Ada L." || usr.AccessToken != "tok-2" {
		t.Errorf("adduser did not update the user: %+v", usr)
	}
	if strings.Contains(out.String(), "tok-2") {
		t.Error("adduser printed the access token")
	}
}

func Test_commandLine_events(t *testing.T) {
	cli, out := setup(t)
	testutil.CreateUser(t, usrRepo, "g-1", "Ada", "ada@test.cd")

	tests := []cliTest{
		{name: "events: no args", args: []string{"events"}, wantErr: errHelp},
		{name: "events: user not found", args: []string{"events", "-googleid", "lol"}, wantErr: user.ErrNotFound},
		{name: "addevent: no args", args: []string{"addevent"}, wantErr: errHelp},
		{name: "addevent: invalid", args: []string{"addevent", "-googleid", "g-1", "-title", "Ex", "-date", "2025-03-10"}, wantErrStr: "Key: 'NewEvent.title' Error:Field validation for 'title' failed on the 'min' tag"},
		{name: "addevent", args: []string{"addevent", "-googleid", "g-1", "-title", "Exam", "-date", "2025-03-10"}},
		{name: "addevent: timed", args: []string{"addevent", "-googleid", "g-1", "-title", "Lab", "-date", "2025-03-10T09:00:00Z"}},
		{name: "deleteevent: no args", args: []string{"deleteevent"}, wantErr: errHelp},
		{name: "deleteevent", args: []string{"deleteevent", "-googleid", "g-1", "-title", "Exam", "-date", "2025-03-10"}},
	}
	runCLITests(t, cli, tests)

	events, err := cli.usrSvc.GetEvents(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("GetEvents() failed, %v", err)
	}
	if len(events) != 1 || events[0].Title != "Lab" {
		t.Errorf("events = %+v, want only Lab", events)
	}

	out.Reset()
	runCLITests(t, cli, []cliTest{{name: "events", args: []string{"events", "-googleid", "g-1"}}})
	if !strings.Contains(out.String(), `"title":"Lab"`) {
		t.Errorf("events output = %s", out.String())
	}
}

func Test_commandLine_calendar(t *testing.T) {
	cli, out := setup(t)
	testutil.CreateUser(t, usrRepo, "g-1", "Ada", "ada@test.cd")
	testutil.CreateEvent(t, usrRepo, "g-1", "Exam", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), true)

	tests := []cliTest{
		{name: "no args", args: []string{"calendar"}, wantErr: errHelp},
		{name: "user not found", args: []string{"calendar", "-googleid", "lol"}, wantErr: user.ErrNotFound},
	}
	runCLITests(t, cli, tests)

	out.Reset()
	runCLITests(t, cli, []cliTest{{name: "json", args: []string{"calendar", "-googleid", "g-1"}}})
	if !strings.Contains(out.String(), `"2025-03-10"`) {
		t.Errorf("calendar output = %s", out.String())
	}

	out.Reset()
	runCLITests(t, cli, []cliTest{{name: "ics", args: []string{"calendar", "-googleid", "g-1", "-ics"}}})
	if !strings.HasPrefix(out.String(), "BEGIN:VCALENDAR") {
		t.Errorf("ics output = %s", out.String())
	}
}
