package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type newsApi struct {
	svc NewsService
}

func registerNewsAPI(g *echo.Group, svc NewsService) {
	api := newsApi{svc: svc}
	g.GET("/news", api.search)
}

// search never fails: upstream problems are answered with fallback articles.
func (api *newsApi) search(ctx echo.Context) error {
	var q NewsQuery
	q.Bind(ctx)
	res := api.svc.Search(ctx.Request().Context(), q.Query, q.Max)
	return ctx.JSON(http.StatusOK, newNewsResponse(res))
}
