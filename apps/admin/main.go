package main

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/trezcool/edutrack/apps/bootstrap"
	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/storage/database"
)

var errNoMongo = errors.New("migrate requires the mongo database engine")

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		logger.Fatal(err)
	}

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	repo, client, err := bootstrap.OpenRepository(ctx, conf, false)
	cancel()
	if err != nil {
		logger.Fatal(err)
	}

	app, err := bootstrap.Wire(conf, bootstrap.NewLogger(conf, "ADMIN : "), repo)
	if err != nil {
		logger.Fatal(err)
	}

	// start CLI
	cli := commandLine{
		usrSvc:      app.UserSvc,
		calendarSvc: app.CalendarSvc,
		migrateFunc: func(ctx context.Context) ([]string, error) {
			if client == nil {
				return nil, errNoMongo
			}
			return database.Migrate(ctx, client.Database(conf.Database.Name))
		},
		out:     os.Stdout,
		pretty:  term.IsTerminal(int(os.Stdout.Fd())),
		calName: conf.AppName,
	}
	err = cli.run(os.Args)

	if client != nil {
		if dErr := client.Disconnect(context.Background()); dErr != nil {
			logger.Printf("disconnecting from database: %v", dErr)
		}
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
