package echoapi

import (
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/chat"
	"github.com/trezcool/edutrack/core/news"
	"github.com/trezcool/edutrack/core/user"
)

type (
	SuccessResponse struct {
		Success bool `json:"success"`
	}

	DeleteEventsResponse struct {
		Success bool         `json:"success"`
		Events  []user.Event `json:"events"`
	}

	NewsQuery struct {
		Query string
		Max   int
	}

	NewsResponse struct {
		Success   *bool          `json:"success,omitempty"`
		FromCache bool           `json:"fromCache"`
		Query     string         `json:"query"`
		Articles  []news.Article `json:"articles"`
		Error     string         `json:"error,omitempty"`
		Fallback  bool           `json:"fallback,omitempty"`
	}

	ChatRequest struct {
		Message string `json:"message" validate:"required,notblank"`
	}

	PlanResponse struct {
		Reply   chat.Reply      `json:"reply"`
		Actions []chat.Action   `json:"actions"`
		Raw     json.RawMessage `json:"raw"`
	}

	ApplyRequest struct {
		Actions []chat.Action `json:"actions" validate:"required,min=1,dive"`
	}

	ApplyResponse struct {
		Results []chat.ActionResult `json:"results"`
	}
)

// Bind reads the query string; an unparsable max counts as unset.
func (q *NewsQuery) Bind(ctx echo.Context) {
	q.Query = ctx.QueryParam("query")
	if m, err := strconv.Atoi(core.CleanString(ctx.QueryParam("max"))); err == nil {
		q.Max = m
	}
}

func newNewsResponse(res news.Result) NewsResponse {
	resp := NewsResponse{
		FromCache: res.FromCache,
		Query:     res.Query,
		Articles:  res.Articles,
	}
	if res.Fallback {
		failed := false
		resp.Success = &failed
		resp.Error = res.Error
		resp.Fallback = true
	}
	if resp.Articles == nil {
		resp.Articles = []news.Article{}
	}
	return resp
}

func (cr *ChatRequest) Validate(validate *validator.Validate) error {
	cr.Message = core.CleanString(cr.Message)
	if cr.Message == "" {
		return core.NewValidationError(chat.ErrMessageRequired, core.FieldError{Field: "message", Error: chat.ErrMessageRequired.Error()})
	}
	return validate.Struct(cr)
}

func (ar *ApplyRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ar)
}
