package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core/user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

type userApi struct {
	svc      user.ServiceInterface
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.ServiceInterface, validate *validator.Validate) {
	api := userApi{svc: svc, validate: validate}

	// detail endpoints
	dg := g.Group("/users/google/:googleId", jwt, ctxUserMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.GET("/events", api.queryEvents)
	dg.POST("/events", api.createEvent)
	dg.DELETE("/events", api.destroyEvents)
}

func ctxObject(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return user.User{}, errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return usr, nil
}

// Handlers

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := ctxObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryEvents(ctx echo.Context) error {
	usr, err := ctxObject(ctx)
	if err != nil {
		return err
	}
	events, err := api.svc.GetEvents(ctx.Request().Context(), usr.GoogleID)
	if err != nil {
		return errors.Wrap(err, "getting events")
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *userApi) createEvent(ctx echo.Context) error {
	usr, err := ctxObject(ctx)
	if err != nil {
		return err
	}

	var data user.NewEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}

	evt, err := api.svc.AddEvent(ctx.Request().Context(), usr.GoogleID, data)
	if err != nil {
		return errors.Wrap(err, "adding event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *userApi) destroyEvents(ctx echo.Context) error {
	usr, err := ctxObject(ctx)
	if err != nil {
		return err
	}

	var data user.DeleteEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteEvent")
	}

	events, err := api.svc.DeleteEvent(ctx.Request().Context(), usr.GoogleID, data)
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.JSON(http.StatusOK, DeleteEventsResponse{Success: true, Events: events})
}
