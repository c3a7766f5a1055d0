package classroomsvc

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/trezcool/edutrack/core"
	coreclassroom "github.com/trezcool/edutrack/core/classroom"
)

const (
	serviceName = "google classroom"
	pageSize    = 100
)

// GoogleClient reads courses and coursework from the Google Classroom API,
// authenticated with the access token of the signed-in user.
type GoogleClient struct {
	httpClient *http.Client
	opts       []option.ClientOption
}

var _ coreclassroom.Client = (*GoogleClient)(nil)

// NewGoogleClient returns a client using httpClient as base transport. opts are appended to every service.
func NewGoogleClient(httpClient *http.Client, opts ...option.ClientOption) *GoogleClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleClient{httpClient: httpClient, opts: opts}
}

func (c *GoogleClient) service(ctx context.Context, accessToken string) (*classroom.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)
	authed.Timeout = c.httpClient.Timeout

	opts := append([]option.ClientOption{option.WithHTTPClient(authed)}, c.opts...)
	svc, err := classroom.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating classroom service")
	}
	return svc, nil
}

func (c *GoogleClient) ListCourses(ctx context.Context, accessToken string) ([]coreclassroom.Course, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	courses := make([]coreclassroom.Course, 0)
	err = svc.Courses.List().PageSize(pageSize).Pages(ctx, func(resp *classroom.ListCoursesResponse) error {
		for _, course := range resp.Courses {
			courses = append(courses, coreclassroom.Course{ID: course.Id, Name: course.Name})
		}
		return nil
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	return courses, nil
}

func (c *GoogleClient) ListCourseWork(ctx context.Context, accessToken, courseID string) ([]coreclassroom.Assignment, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	work := make([]coreclassroom.Assignment, 0)
	err = svc.Courses.CourseWork.List(courseID).PageSize(pageSize).Pages(ctx, func(resp *classroom.ListCourseWorkResponse) error {
		for _, cw := range resp.CourseWork {
			work = append(work, convertCourseWork(cw))
		}
		return nil
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	return work, nil
}

func convertCourseWork(cw *classroom.CourseWork) coreclassroom.Assignment {
	a := coreclassroom.Assignment{
		CourseID: cw.CourseId,
		ID:       cw.Id,
		Title:    cw.Title,
		Link:     cw.AlternateLink,
	}
	if cw.DueDate != nil {
		a.DueDate = &coreclassroom.Date{Year: int(cw.DueDate.Year), Month: int(cw.DueDate.Month), Day: int(cw.DueDate.Day)}
	}
	if cw.DueTime != nil {
		a.DueTime = &coreclassroom.TimeOfDay{
			Hours:   int(cw.DueTime.Hours),
			Minutes: int(cw.DueTime.Minutes),
			Seconds: int(cw.DueTime.Seconds),
		}
	}
	return a
}

func upstreamError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return core.NewUpstreamError(serviceName, gErr.Code, gErr.Message, err)
	}
	return core.NewUpstreamError(serviceName, 0, "", err)
}
