package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/user"
)

var nowFunc = time.Now // mockable

type (
	EventSource interface {
		GetEvents(ctx context.Context, googleID string) ([]user.Event, error)
	}

	AssignmentSource interface {
		ListAssignments(ctx context.Context, accessToken string) ([]classroom.Assignment, error)
	}

	Service struct {
		events      EventSource
		assignments AssignmentSource
		loc         *time.Location
		logger      core.Logger
	}
)

func NewService(events EventSource, assignments AssignmentSource, loc *time.Location, logger core.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{events: events, assignments: assignments, loc: loc, logger: logger}
}

func (svc *Service) Location() *time.Location { return svc.loc }

// Build fetches the user's events and assignments concurrently and merges them.
// A failing source is logged and reported as a warning; the other one is still used.
func (svc *Service) Build(ctx context.Context, usr user.User) View {
	var (
		wg          sync.WaitGroup
		events      []user.Event
		assignments []classroom.Assignment
		evtErr      error
		asgErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		events, evtErr = svc.events.GetEvents(ctx, usr.GoogleID)
	}()
	go func() {
		defer wg.Done()
		assignments, asgErr = svc.assignments.ListAssignments(ctx, usr.AccessToken)
	}()
	wg.Wait()

	var warnings []string
	if evtErr != nil {
		svc.logger.Error("fetching events", evtErr, usr)
		warnings = append(warnings, "events could not be loaded")
	}
	if asgErr != nil {
		svc.logger.Error("fetching assignments", asgErr, usr)
		warnings = append(warnings, "assignments could not be loaded")
	}

	view, skipped := Merge(events, assignments, svc.loc, nowFunc())
	for _, a := range skipped {
		svc.logger.Warn(fmt.Sprintf("skipping assignment %s of course %s: invalid due date %+v", a.ID, a.CourseID, *a.DueDate), usr)
	}
	view.Warnings = warnings
	return view
}
