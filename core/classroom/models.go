package classroom

import (
	"context"
	"time"
)

// Date is a calendar date as returned by Classroom. A zero field means it is missing.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Valid reports whether every field is set and the date exists.
func (d Date) Valid() bool {
	if d.Year <= 0 || d.Month <= 0 || d.Day <= 0 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

type TimeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds,omitempty"`
}

type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assignment is a piece of coursework. Due date and time are expressed in UTC.
type Assignment struct {
	CourseID string     `json:"course_id"`
	Course   string     `json:"course"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	DueDate  *Date      `json:"due_date,omitempty"`
	DueTime  *TimeOfDay `json:"due_time,omitempty"`
	Link     string     `json:"link,omitempty"`
}

// Client lists courses and coursework on behalf of the owner of accessToken.
type Client interface {
	ListCourses(ctx context.Context, accessToken string) ([]Course, error)
	ListCourseWork(ctx context.Context, accessToken, courseID string) ([]Assignment, error)
}
