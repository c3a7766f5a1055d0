package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	echoapi "github.com/trezcool/edutrack/apps/api/echo"
	"github.com/trezcool/edutrack/apps/bootstrap"
	"github.com/trezcool/edutrack/core"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.New(os.Stderr, "LAMBDA : ", log.LstdFlags).Fatal(err)
	}
	logger := bootstrap.NewLogger(conf, "LAMBDA : ")
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	app, err := bootstrap.New(ctx, conf, logger)
	cancel()
	if err != nil {
		logger.Fatal("init failed", err)
	}
	defer func() { _ = app.Close(context.Background()) }()

	srv := echoapi.NewServer(app.ServerDeps())
	lambda.Start(newProxy(srv).handle)
}
