package classroomsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"

	"github.com/trezcool/edutrack/core"
	coreclassroom "github.com/trezcool/edutrack/core/classroom"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleClient(srv.Client(), option.WithEndpoint(srv.URL+"/"))
}

func TestGoogleClient_ListCourses(t *testing.T) {
	var auths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/courses", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"courses":[{"id":"c1","name":"Math"}],"nextPageToken":"p2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"courses":[{"id":"c2","name":"Physics"}]}`))
	})

	courses, err := client.ListCourses(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, []coreclassroom.Course{{ID: "c1", Name: "Math"}, {ID: "c2", Name: "Physics"}}, courses)
	assert.Equal(t, []string{"Bearer user-token", "Bearer user-token"}, auths)
}

func TestGoogleClient_ListCourses_error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Request had invalid authentication credentials."}}`))
	})

	_, err := client.ListCourses(context.Background(), "expired")
	var upErr *core.UpstreamError
	require.True(t, errors.As(err, &upErr), "got %T", err)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, "Request had invalid authentication credentials.", upErr.Body)
}

func TestGoogleClient_ListCourseWork(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/courses/c1/courseWork", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"courseWork":[
			{"courseId":"c1","id":"w1","title":"Homework","alternateLink":"https://classroom.google.com/w1",
			 "dueDate":{"year":2024,"month":3,"day":4},"dueTime":{"hours":23,"minutes":59}},
			{"courseId":"c1","id":"w2","title":"Reading"}
		]}`))
	})

	work, err := client.ListCourseWork(context.Background(), "user-token", "c1")
	require.NoError(t, err)
	require.Len(t, work, 2)
	assert.Equal(t, coreclassroom.Assignment{
		CourseID: "c1",
		ID:       "w1",
		Title:    "Homework",
		Link:     "https://classroom.google.com/w1",
		DueDate:  &coreclassroom.Date{Year: 2024, Month: 3, Day: 4},
		DueTime:  &coreclassroom.TimeOfDay{Hours: 23, Minutes: 59},
	}, work[0])
	assert.Nil(t, work[1].DueDate)
	assert.Nil(t, work[1].DueTime)
}

func TestConvertCourseWork_partialDate(t *testing.T) {
	a := convertCourseWork(&classroom.CourseWork{Id: "w1", DueDate: &classroom.Date{Year: 2024, Month: 3}})
	require.NotNil(t, a.DueDate)
	assert.False(t, a.DueDate.Valid())
}
