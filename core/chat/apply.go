package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/user"
)

const (
	OpAdd    = "add"
	OpDelete = "delete"
)

type (
	EventStore interface {
		GetEvents(ctx context.Context, googleID string) ([]user.Event, error)
		AddEvent(ctx context.Context, googleID string, ne user.NewEvent) (user.Event, error)
		DeleteEvent(ctx context.Context, googleID string, de user.DeleteEvent) ([]user.Event, error)
	}

	// Action is an explicit calendar change requested after a chat exchange.
	Action struct {
		Op          string `json:"op" validate:"required,oneof=add delete"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Date        string `json:"date"`
		AllDay      *bool  `json:"all_day"`
	}

	// ActionResult acknowledges one Action.
	ActionResult struct {
		Index   int         `json:"index"`
		Op      string      `json:"op"`
		Success bool        `json:"success"`
		Error   string      `json:"error,omitempty"`
		Event   *user.Event `json:"event,omitempty"`
		Removed int         `json:"removed,omitempty"`
	}
)

// Apply runs every action in order and acknowledges each one.
// A failing action does not stop the following ones.
func (svc *Service) Apply(ctx context.Context, googleID string, actions []Action) ([]ActionResult, error) {
	events, err := svc.events.GetEvents(ctx, googleID)
	if err != nil {
		return nil, err
	}
	count := len(events)

	results := make([]ActionResult, 0, len(actions))
	for i, a := range actions {
		res := ActionResult{Index: i, Op: a.Op}
		switch strings.ToLower(core.CleanString(a.Op)) {
		case OpAdd:
			evt, err := svc.events.AddEvent(ctx, googleID, user.NewEvent{
				Title:       a.Title,
				Description: a.Description,
				Date:        a.Date,
				AllDay:      a.AllDay,
			})
			if err == nil {
				res.Event = &evt
				count++
			}
			res.setError(err)
		case OpDelete:
			remaining, err := svc.events.DeleteEvent(ctx, googleID, user.DeleteEvent{Title: a.Title, Date: a.Date})
			if err == nil {
				res.Removed = count - len(remaining)
				count = len(remaining)
			}
			res.setError(err)
		default:
			res.setError(errors.Errorf("unknown op %q", a.Op))
		}
		if !res.Success {
			svc.logger.Warn(fmt.Sprintf("chat action %d failed", i), errors.New(res.Error))
		}
		results = append(results, res)
	}
	return results, nil
}

func (res *ActionResult) setError(err error) {
	if err == nil {
		res.Success = true
		return
	}
	res.Error = describeError(err)
}

func describeError(err error) string {
	if vErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
