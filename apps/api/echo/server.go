package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/chat"
	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/news"
	"github.com/trezcool/edutrack/core/user"
)

type (
	CalendarService interface {
		Build(ctx context.Context, usr user.User) calendar.View
	}

	AssignmentService interface {
		ListAssignments(ctx context.Context, accessToken string) ([]classroom.Assignment, error)
	}

	NewsService interface {
		Search(ctx context.Context, query string, max int) news.Result
	}

	ChatService interface {
		Ask(ctx context.Context, message string) (json.RawMessage, error)
		Plan(ctx context.Context, message string) (json.RawMessage, chat.Reply, error)
		Apply(ctx context.Context, googleID string, actions []chat.Action) ([]chat.ActionResult, error)
	}

	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		UserSvc      user.ServiceInterface
		CalendarSvc  CalendarService
		ClassroomSvc AssignmentService
		NewsSvc      NewsService
		ChatSvc      ChatService
		Identity     user.IdentityProvider
		Validate     *validator.Validate
		Translator   ut.Translator
	}

	Server struct {
		deps      ServerDeps
		app       *echo.Echo
		sessions  sessionManager
		errors    chan error
		shutdown  chan os.Signal
		rateLimit *rateLimiter
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		sessions: newSessionManager(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	if deps.Conf.Server.RateLimit > 0 {
		s.rateLimit = newRateLimiter(deps.Conf.Server.RateLimit, deps.Conf.Server.RateWindow)
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug && !conf.TestMode
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if s.rateLimit != nil {
		s.app.Use(s.rateLimit.middleware())
	}

	jwt := s.sessions.middleware()

	registerAuthAPI(s.app.Group("/auth"), jwt, s.sessions, s.deps)

	api := s.app.Group("/api")
	api.GET("/health", health)
	registerUserAPI(api, jwt, s.deps.UserSvc, s.deps.Validate)
	registerCalendarAPI(api, jwt, s.deps)
	registerNewsAPI(api, s.deps.NewsSvc)
	registerChatAPI(api, jwt, s.deps)
}

// Start blocks until the server stops. Errors other than a graceful close are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "OK", "message": "Server is running"})
}
