package classroom

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

type Service struct {
	client Client
	logger core.Logger
}

func NewService(client Client, logger core.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// ListAssignments returns the coursework of every course, in course order then coursework order.
// Courses are fetched concurrently; a course that fails is logged and contributes nothing.
func (svc *Service) ListAssignments(ctx context.Context, accessToken string) ([]Assignment, error) {
	courses, err := svc.client.ListCourses(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}

	results := make([][]Assignment, len(courses))
	var wg sync.WaitGroup
	for i, c := range courses {
		wg.Add(1)
		go func(i int, c Course) {
			defer wg.Done()
			work, err := svc.client.ListCourseWork(ctx, accessToken, c.ID)
			if err != nil {
				svc.logger.Warn("listing coursework of course "+c.ID, err)
				return
			}
			for j := range work {
				work[j].CourseID = c.ID
				work[j].Course = c.Name
			}
			results[i] = work
		}(i, c)
	}
	wg.Wait()

	assignments := make([]Assignment, 0)
	for _, work := range results {
		assignments = append(assignments, work...)
	}
	return assignments, nil
}
