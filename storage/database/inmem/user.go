package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/edutrack/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

// copyUser detaches the returned user from the stored one.
func copyUser(usr *user.User) user.User {
	u := *usr
	u.Events = make([]user.Event, len(usr.Events))
	copy(u.Events, usr.Events)
	return u
}

func (repo *userRepository) GetUserByGoogleID(_ context.Context, googleID string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.table[googleID]; ok {
		return copyUser(usr), nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpsertUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, u := range repo.db.table {
		if u.Email == usr.Email && id != usr.GoogleID {
			return user.User{}, user.ErrEmailExists
		}
	}

	if existing, ok := repo.db.table[usr.GoogleID]; ok {
		existing.Name = usr.Name
		existing.Email = usr.Email
		existing.AccessToken = usr.AccessToken
		existing.UpdatedAt = usr.UpdatedAt
		return copyUser(existing), nil
	}

	if usr.Events == nil {
		usr.Events = []user.Event{}
	}
	stored := copyUser(&usr)
	repo.db.table[usr.GoogleID] = &stored
	return copyUser(&stored), nil
}

func (repo *userRepository) QueryUsers(_ context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (repo *userRepository) AddEvent(_ context.Context, googleID string, evt user.Event) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[googleID]
	if !ok {
		return user.ErrNotFound
	}
	usr.Events = append(usr.Events, evt)
	usr.UpdatedAt = evt.UpdatedAt
	return nil
}

func (repo *userRepository) DeleteEvents(_ context.Context, googleID, title string, date, updatedAt time.Time) ([]user.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[googleID]
	if !ok {
		return nil, user.ErrNotFound
	}
	kept := make([]user.Event, 0, len(usr.Events))
	for _, evt := range usr.Events {
		if evt.Title == title && evt.Date.Equal(date) {
			continue
		}
		kept = append(kept, evt)
	}
	usr.Events = kept
	usr.UpdatedAt = updatedAt
	return copyUser(usr).Events, nil
}
