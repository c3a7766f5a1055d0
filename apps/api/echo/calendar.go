package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/user"
)

const icsContentType = "text/calendar; charset=utf-8"

type calendarApi struct {
	appName     string
	userSvc     user.ServiceInterface
	calendarSvc CalendarService
	classroom   AssignmentService
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := calendarApi{
		appName:     deps.Conf.AppName,
		userSvc:     deps.UserSvc,
		calendarSvc: deps.CalendarSvc,
		classroom:   deps.ClassroomSvc,
	}

	g.GET("/assignments", api.assignments, jwt)
	g.GET("/calendar", api.calendar, jwt)
	g.GET("/calendar.ics", api.calendarICS, jwt)
}

func (api *calendarApi) assignments(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	assignments, err := api.classroom.ListAssignments(ctx.Request().Context(), usr.AccessToken)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	if assignments == nil {
		assignments = []classroom.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *calendarApi) calendar(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, api.calendarSvc.Build(ctx.Request().Context(), usr))
}

func (api *calendarApi) calendarICS(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	view := api.calendarSvc.Build(ctx.Request().Context(), usr)
	doc := calendar.ExportICS(view, api.appName, nowFunc())

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.ics"`)
	return ctx.Blob(http.StatusOK, icsContentType, []byte(doc))
}
