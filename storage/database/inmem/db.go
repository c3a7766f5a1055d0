package inmemdb

import (
	"sync"

	"github.com/trezcool/edutrack/core/user"
)

type (
	// DB is a process-local store used in tests and when database.engine is "memory".
	DB struct {
		user *userTable
	}

	userTable struct {
		table map[string]*user.User // keyed by GoogleID
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}
