// internal/app/services/courses/service.go
package courses

import (
	"context"
	"errors"
	"fmt"

	coursestore "github.com/dalemusser/studyhub/internal/app/store/courses"
	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
)

type CourseStore interface {
	Create(ctx context.Context, c models.Course) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
}

type Service struct {
	courses CourseStore
}

func New(courses CourseStore) *Service {
	return &Service{courses: courses}
}

// List returns every course ordered by code.
func (s *Service) List(ctx context.Context) ([]models.Course, error) {
	list, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return list, nil
}

type CreateCourseInput struct {
	Name        string `json:"name" validate:"required,max=200" label:"Name"`
	Code        string `json:"code" validate:"required,max=20" label:"Code"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
}

// Create adds a course. Codes are unique regardless of case.
func (s *Service) Create(ctx context.Context, in CreateCourseInput) (models.Course, error) {
	in.Name = normalize.Name(htmlsanitize.PlainText(in.Name))
	in.Code = normalize.Code(htmlsanitize.PlainText(in.Code))
	in.Description = htmlsanitize.PlainText(in.Description)
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Course{}, err
	}
	c, err := s.courses.Create(ctx, models.Course{Name: in.Name, Code: in.Code, Description: in.Description})
	if err != nil {
		if errors.Is(err, coursestore.ErrDuplicateCode) {
			return models.Course{}, apperr.ConflictErr("course code already exists")
		}
		return models.Course{}, fmt.Errorf("create course: %w", err)
	}
	return c, nil
}
