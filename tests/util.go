package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	googleID, name, email string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		GoogleID:    googleID,
		Name:        name,
		Email:       email,
		AccessToken: "token-" + googleID,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	usr, err := repo.UpsertUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateEvent(t *testing.T, repo user.Repository, googleID, title string, date time.Time, allDay bool) user.Event {
	now := time.Now().UTC()
	evt := user.Event{
		ID:        fmt.Sprintf("%s-%d", googleID, date.UnixNano()),
		Title:     title,
		Date:      user.CanonicalDate(date),
		AllDay:    allDay,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.AddEvent(context.Background(), googleID, evt); err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}

// NewValidator returns a validator set up the way the apps set it up.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// Logger records logged messages for assertions.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, level+": "+msg)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Messages)
}
