package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	errGoogleIDRequired = errors.New("google id is required")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetUserByGoogleID(ctx context.Context, googleID string) (User, error)
		// UpsertUser creates the user on first login, otherwise refreshes name, email and access token.
		UpsertUser(ctx context.Context, usr User) (User, error)
		QueryUsers(ctx context.Context) ([]User, error)
		AddEvent(ctx context.Context, googleID string, evt Event) error
		// DeleteEvents removes every event with this exact title and date and returns the remaining events.
		DeleteEvents(ctx context.Context, googleID, title string, date, updatedAt time.Time) ([]Event, error)
	}

	ServiceInterface interface {
		Login(ctx context.Context, p Profile) (User, error)
		GetByGoogleID(ctx context.Context, googleID string) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetEvents(ctx context.Context, googleID string) ([]Event, error)
		AddEvent(ctx context.Context, googleID string, ne NewEvent) (Event, error)
		DeleteEvent(ctx context.Context, googleID string, de DeleteEvent) ([]Event, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Login upserts the user identified by the OAuth profile.
func (svc *Service) Login(ctx context.Context, p Profile) (User, error) {
	p.GoogleID = core.CleanString(p.GoogleID)
	if p.GoogleID == "" {
		return User{}, core.NewValidationError(errGoogleIDRequired)
	}
	now := nowFunc().UTC()
	usr := User{
		GoogleID:    p.GoogleID,
		Name:        core.CleanString(p.Name),
		Email:       core.CleanString(p.Email, true /* lower */),
		AccessToken: p.AccessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	usr, err := svc.repo.UpsertUser(ctx, usr)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "upserting user")
	}
	return usr, nil
}

func (svc *Service) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	return svc.repo.GetUserByGoogleID(ctx, core.CleanString(googleID))
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx)
}

// GetEvents returns the user's events in insertion order.
func (svc *Service) GetEvents(ctx context.Context, googleID string) ([]Event, error) {
	usr, err := svc.GetByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	if usr.Events == nil {
		return []Event{}, nil
	}
	return usr.Events, nil
}

func (svc *Service) AddEvent(ctx context.Context, googleID string, ne NewEvent) (Event, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Event{}, err
	}
	date, dateOnly, err := ParseDate(ne.Date)
	if err != nil {
		return Event{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: eventDateText})
	}

	allDay := dateOnly
	if !dateOnly && ne.AllDay != nil {
		allDay = *ne.AllDay
	}
	now := nowFunc().UTC()
	evt := Event{
		ID:          uuid.NewString(),
		Title:       ne.Title,
		Description: ne.Description,
		Date:        CanonicalDate(date),
		AllDay:      allDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = svc.repo.AddEvent(ctx, core.CleanString(googleID), evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// DeleteEvent removes the events matching both title and date exactly and returns the remaining ones.
func (svc *Service) DeleteEvent(ctx context.Context, googleID string, de DeleteEvent) ([]Event, error) {
	if err := de.Validate(svc.validate); err != nil {
		return nil, err
	}
	date, _, err := ParseDate(de.Date)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "date", Error: eventDateText})
	}
	events, err := svc.repo.DeleteEvents(ctx, core.CleanString(googleID), de.Title, CanonicalDate(date), nowFunc().UTC())
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}
