package user

import "time"

// SetNowFunc replaces the service clock for the duration of a test.
func SetNowFunc(f func() time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = f
	return func() { nowFunc = orig }
}
