// Package bootstrap builds the dependencies shared by the API server, the Lambda handler and the admin CLI.
package bootstrap

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	echoapi "github.com/trezcool/edutrack/apps/api/echo"
	"github.com/trezcool/edutrack/assets"
	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/chat"
	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/news"
	"github.com/trezcool/edutrack/core/user"
	classroomsvc "github.com/trezcool/edutrack/services/classroom"
	identitysvc "github.com/trezcool/edutrack/services/identity"
	llmsvc "github.com/trezcool/edutrack/services/llm"
	logsvc "github.com/trezcool/edutrack/services/logger"
	"github.com/trezcool/edutrack/storage/cache"
	"github.com/trezcool/edutrack/storage/database"
	inmemdb "github.com/trezcool/edutrack/storage/database/inmem"
	"github.com/trezcool/edutrack/storage/database/mongodb"
)

type App struct {
	Conf       *core.Config
	Logger     *logsvc.RollbarLogger
	Validate   *validator.Validate
	Translator ut.Translator

	UserRepo     user.Repository
	UserSvc      *user.Service
	ClassroomSvc *classroom.Service
	CalendarSvc  *calendar.Service
	NewsSvc      *news.Service
	ChatSvc      *chat.Service
	Identity     *identitysvc.GoogleProvider

	mongoClient *mongo.Client
}

func NewLogger(conf *core.Config, prefix string) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every custom tag and English translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// OpenRepository returns the user repository of the configured engine.
// The returned client is nil for the in-memory engine.
func OpenRepository(ctx context.Context, conf *core.Config, migrate bool) (user.Repository, *mongo.Client, error) {
	switch conf.Database.Engine {
	case "memory":
		return inmemdb.NewUserRepository(inmemdb.Open()), nil, nil
	case "mongo", "":
		client, db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if _, err = database.Migrate(ctx, db); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, nil, err
			}
		}
		return mongodb.NewUserRepository(db), client, nil
	default:
		return nil, nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

// New opens the configured database, migrating it, and wires every service on top of it.
func New(ctx context.Context, conf *core.Config, logger *logsvc.RollbarLogger) (*App, error) {
	repo, client, err := OpenRepository(ctx, conf, true)
	if err != nil {
		return nil, errors.Wrap(err, "setting up database")
	}
	app, err := Wire(conf, logger, repo)
	if err != nil {
		if client != nil {
			_ = client.Disconnect(context.Background())
		}
		return nil, err
	}
	app.mongoClient = client
	return app, nil
}

// Wire builds the services on top of repo.
func Wire(conf *core.Config, logger *logsvc.RollbarLogger, repo user.Repository) (*App, error) {
	systemPrompt, err := assets.SystemPrompt(conf.Chat.SystemPromptPath)
	if err != nil {
		return nil, err
	}

	app := &App{Conf: conf, Logger: logger, UserRepo: repo}
	app.Validate, app.Translator = NewValidator()

	httpClient := &http.Client{Timeout: conf.HTTPClientTimeout}

	app.UserSvc = user.NewService(repo, app.Validate)
	app.ClassroomSvc = classroom.NewService(classroomsvc.NewGoogleClient(httpClient), logger)
	app.CalendarSvc = calendar.NewService(app.UserSvc, app.ClassroomSvc, conf.Location(), logger)
	app.NewsSvc = news.NewService(
		llmsvc.NewPerplexity(conf, httpClient),
		cache.New[[]news.Article](conf.News.CacheTTL),
		logger,
	)
	app.ChatSvc = chat.NewService(
		llmsvc.NewIAMTokenSource(conf, httpClient),
		llmsvc.NewDeploymentClient(conf, httpClient),
		systemPrompt,
		app.UserSvc,
		logger,
	)
	app.Identity = identitysvc.NewGoogleProvider(conf, httpClient)
	return app, nil
}

func (app *App) ServerDeps() echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:         app.Conf,
		Logger:       app.Logger,
		UserSvc:      app.UserSvc,
		CalendarSvc:  app.CalendarSvc,
		ClassroomSvc: app.ClassroomSvc,
		NewsSvc:      app.NewsSvc,
		ChatSvc:      app.ChatSvc,
		Identity:     app.Identity,
		Validate:     app.Validate,
		Translator:   app.Translator,
	}
}

// Close disconnects from the database.
func (app *App) Close(ctx context.Context) error {
	if app.mongoClient == nil {
		return nil
	}
	return errors.Wrap(app.mongoClient.Disconnect(ctx), "disconnecting from database")
}
