package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edutrack/core"
)

// date layouts accepted for event dates, tried in order.
const (
	layoutDate          = "2006-01-02"
	layoutDateTimeLocal = "2006-01-02T15:04"
)

type User struct {
	GoogleID    string    `json:"google_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	Events      []Event   `json:"events"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Event is a user-created calendar event, embedded in its owner's document.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"` // UTC, millisecond precision
	AllDay      bool      `json:"all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanonicalDate returns the form under which event dates are stored and compared.
func CanonicalDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ParseDate parses an event date.
// A bare calendar date is midnight UTC of that day and reports dateOnly.
// Date-times without an offset are read as UTC.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = core.CleanString(s)
	if t, err = time.Parse(layoutDate, s); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return CanonicalDate(t), false, nil
	}
	if t, err = time.Parse(layoutDateTimeLocal, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, err
}

// Profile is the identity returned by the OAuth provider after a successful login.
type Profile struct {
	GoogleID    string
	Name        string
	Email       string
	AccessToken string
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Title       string `json:"title" validate:"required,notblank,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
	Date        string `json:"date" validate:"required,eventdate"`
	AllDay      *bool  `json:"all_day"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	return validate.Struct(ne)
}

// DeleteEvent identifies the events to remove: same title and same instant.
type DeleteEvent struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required,eventdate"`
}

func (de *DeleteEvent) Validate(validate *validator.Validate) error {
	de.Title = core.CleanString(de.Title)
	return validate.Struct(de)
}

// IdentityProvider signs users in with a third-party OAuth provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Profile, error)
}
