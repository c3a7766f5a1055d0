package classroom_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/tests"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) ListCourses(ctx context.Context, accessToken string) ([]classroom.Course, error) {
	args := m.Called(ctx, accessToken)
	courses, _ := args.Get(0).([]classroom.Course)
	return courses, args.Error(1)
}

func (m *mockClient) ListCourseWork(ctx context.Context, accessToken, courseID string) ([]classroom.Assignment, error) {
	args := m.Called(ctx, accessToken, courseID)
	work, _ := args.Get(0).([]classroom.Assignment)
	return work, args.Error(1)
}

func TestService_ListAssignments(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("ListCourses", ctx, "tok").Return([]classroom.Course{
		{ID: "c1", Name: "Math"},
		{ID: "c2", Name: "Physics"},
		{ID: "c3", Name: "History"},
	}, nil)
	client.On("ListCourseWork", ctx, "tok", "c1").Return([]classroom.Assignment{
		{ID: "a1", Title: "Algebra"},
		{ID: "a2", Title: "Geometry", DueDate: &classroom.Date{Year: 2024, Month: 3, Day: 4}},
	}, nil)
	client.On("ListCourseWork", ctx, "tok", "c2").Return(nil, errors.New("forbidden"))
	client.On("ListCourseWork", ctx, "tok", "c3").Return([]classroom.Assignment{{ID: "a3", Title: "Essay"}}, nil)

	logger := new(testutil.Logger)
	svc := classroom.NewService(client, logger)

	got, err := svc.ListAssignments(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "Math", got[0].Course)
	assert.Equal(t, "c1", got[1].CourseID)
	assert.Equal(t, "History", got[2].Course)
	assert.Equal(t, 1, logger.Count(), "the failed course is logged")
	client.AssertExpectations(t)
}

func TestService_ListAssignments_coursesFail(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("ListCourses", ctx, "tok").Return(nil, errors.New("unauthorized"))

	svc := classroom.NewService(client, new(testutil.Logger))
	_, err := svc.ListAssignments(ctx, "tok")
	assert.EqualError(t, err, "listing courses: unauthorized")
}

func TestService_ListAssignments_noCourses(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("ListCourses", ctx, "tok").Return([]classroom.Course{}, nil)

	svc := classroom.NewService(client, new(testutil.Logger))
	got, err := svc.ListAssignments(ctx, "tok")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDate_Valid(t *testing.T) {
	tests := []struct {
		date classroom.Date
		want bool
	}{
		{classroom.Date{Year: 2024, Month: 2, Day: 29}, true},
		{classroom.Date{Year: 2023, Month: 2, Day: 29}, false},
		{classroom.Date{Year: 2024, Month: 13, Day: 1}, false},
		{classroom.Date{Month: 3, Day: 4}, false},
		{classroom.Date{Year: 2024, Day: 4}, false},
		{classroom.Date{Year: 2024, Month: 3}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.date.Valid(), "%+v", tt.date)
	}
}
