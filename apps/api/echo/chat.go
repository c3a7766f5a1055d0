package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core/chat"
	"github.com/trezcool/edutrack/core/user"
)

type chatApi struct {
	svc      ChatService
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := chatApi{svc: deps.ChatSvc, userSvc: deps.UserSvc, validate: deps.Validate}

	cg := g.Group("/chat", jwt)
	cg.POST("", api.ask)
	cg.POST("/plan", api.plan)
	cg.POST("/apply", api.apply)
}

func (api *chatApi) bindMessage(ctx echo.Context) (string, error) {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return "", errors.Wrap(err, "binding to ChatRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return "", err
	}
	return data.Message, nil
}

// ask relays the deployment's answer untouched.
func (api *chatApi) ask(ctx echo.Context) error {
	msg, err := api.bindMessage(ctx)
	if err != nil {
		return err
	}
	raw, err := api.svc.Ask(ctx.Request().Context(), msg)
	if err != nil {
		return errors.Wrap(err, "asking chat deployment")
	}
	return ctx.JSONBlob(http.StatusOK, raw)
}

func (api *chatApi) plan(ctx echo.Context) error {
	msg, err := api.bindMessage(ctx)
	if err != nil {
		return err
	}
	raw, reply, err := api.svc.Plan(ctx.Request().Context(), msg)
	if err != nil {
		return errors.Wrap(err, "planning")
	}
	return ctx.JSON(http.StatusOK, PlanResponse{Reply: reply, Actions: reply.Actions(), Raw: raw})
}

func (api *chatApi) apply(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data ApplyRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApplyRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	results, err := api.svc.Apply(ctx.Request().Context(), usr.GoogleID, data.Actions)
	if err != nil {
		return errors.Wrap(err, "applying chat actions")
	}
	return ctx.JSON(http.StatusOK, ApplyResponse{Results: results})
}

var _ ChatService = (*chat.Service)(nil)
