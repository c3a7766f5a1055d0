package calendar

import (
	"sort"
	"time"

	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/user"
)

const dateKeyLayout = "2006-01-02"

type Kind string

const (
	KindCustom     Kind = "custom"
	KindAssignment Kind = "assignment"
)

// Entry is one line of the calendar: a user event or an assignment.
type Entry struct {
	Date    string    `json:"date"` // YYYY-MM-DD, calendar time zone
	Title   string    `json:"title"`
	Kind    Kind      `json:"type"`
	SortKey time.Time `json:"sort_key"`
	HasTime bool      `json:"has_time"`

	// custom events only
	EventID     string `json:"event_id,omitempty"`
	Description string `json:"description,omitempty"`

	// assignments only
	Course     string `json:"course,omitempty"`
	HasDueDate *bool  `json:"has_due_date,omitempty"`
	Link       string `json:"link,omitempty"`
}

// View is the calendar grouped by date key.
type View struct {
	Days     map[string][]Entry `json:"days"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Dates returns the date keys in ascending order.
func (v View) Dates() []string {
	dates := make([]string, 0, len(v.Days))
	for d := range v.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Merge groups events and assignments by date and sorts every group.
// Assignments with an invalid due date are returned as skipped.
func Merge(events []user.Event, assignments []classroom.Assignment, loc *time.Location, now time.Time) (View, []classroom.Assignment) {
	if loc == nil {
		loc = time.UTC
	}
	view := View{Days: make(map[string][]Entry)}
	add := func(e Entry) { view.Days[e.Date] = append(view.Days[e.Date], e) }

	for _, evt := range events {
		add(eventEntry(evt, loc))
	}

	var skipped []classroom.Assignment
	for _, a := range assignments {
		e, ok := assignmentEntry(a, loc, now)
		if !ok {
			skipped = append(skipped, a)
			continue
		}
		add(e)
	}

	for _, entries := range view.Days {
		sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j], loc) })
	}
	return view, skipped
}

func eventEntry(evt user.Event, loc *time.Location) Entry {
	e := Entry{
		Title:       evt.Title,
		Kind:        KindCustom,
		EventID:     evt.ID,
		Description: evt.Description,
	}
	if evt.AllDay {
		// all-day events are stored at midnight UTC of their day
		d := evt.Date.UTC()
		e.SortKey = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	} else {
		e.SortKey = evt.Date.In(loc)
		e.HasTime = true
	}
	e.Date = e.SortKey.Format(dateKeyLayout)
	return e
}

func assignmentEntry(a classroom.Assignment, loc *time.Location, now time.Time) (Entry, bool) {
	hasDueDate := a.DueDate != nil
	e := Entry{
		Title:      a.Course + ": " + a.Title,
		Kind:       KindAssignment,
		Course:     a.Course,
		HasDueDate: &hasDueDate,
		Link:       a.Link,
	}

	switch {
	case !hasDueDate:
		today := now.In(loc)
		e.SortKey = time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, loc)
	case !a.DueDate.Valid():
		return Entry{}, false
	case a.DueTime != nil:
		d, t := a.DueDate, a.DueTime
		e.SortKey = time.Date(d.Year, time.Month(d.Month), d.Day, t.Hours, t.Minutes, t.Seconds, 0, time.UTC).In(loc)
		e.HasTime = true
	default:
		d := a.DueDate
		e.SortKey = time.Date(d.Year, time.Month(d.Month), d.Day, 23, 59, 59, 0, loc)
	}
	e.Date = e.SortKey.Format(dateKeyLayout)
	return e, true
}

// timeOfDay is the offset from midnight, or a full day when the time is unknown.
func timeOfDay(e Entry, loc *time.Location) time.Duration {
	if !e.HasTime {
		return 24 * time.Hour
	}
	t := e.SortKey.In(loc)
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// less orders by known time of day, then assignments before custom events, then by title.
func less(a, b Entry, loc *time.Location) bool {
	ta, tb := timeOfDay(a, loc), timeOfDay(b, loc)
	if ta != tb {
		return ta < tb
	}
	if a.Kind != b.Kind {
		return a.Kind == KindAssignment
	}
	return a.Title < b.Title
}
