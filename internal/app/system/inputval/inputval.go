// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule, already rendered for display.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of a Validate call in field order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Err returns nil when valid, otherwise a Validation error carrying First.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return apperr.ValidationErr(r.First())
}

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("skilllevel", func(fl validator.FieldLevel) bool {
			return IsValidSkillLevel(fl.Field().String())
		})
	})
	return v
}

// Validate runs the `validate` struct tags on s. Messages use the `label`
// tag when present.
func Validate(s any) *Result {
	res := &Result{}
	err := engine().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.StructField(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "objectid":
		return label + " is not a valid id."
	case "skilllevel":
		return label + " must be one of " + strings.Join(models.SkillLevels, ", ") + "."
	default:
		return label + " is invalid."
	}
}

// IsValidObjectID reports whether s is a 24-char hex ObjectID.
func IsValidObjectID(s string) bool {
	return primitive.IsValidObjectID(strings.TrimSpace(s))
}

// IsValidSkillLevel accepts "" (unspecified) or one of models.SkillLevels.
func IsValidSkillLevel(s string) bool {
	return s == "" || lo.Contains(models.SkillLevels, s)
}
