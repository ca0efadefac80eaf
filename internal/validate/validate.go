// Package validate checks request structs against their `validate` tags and
// reports the first failure as a domain.ValidationError.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

var (
	lettersAndSpaces = regexp.MustCompile(`^[A-Za-z\s]+$`)
	looseEmail       = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return lettersAndSpaces.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	return val
}

func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("", err.Error())
	}

	fe := verrs[0]
	return domain.Invalid(fe.Field(), reason(fe))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "gte":
		return "must be at least " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid id"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "alphaspace":
		return "must contain only letters and spaces"
	case "looseemail", "email":
		return "invalid email format"
	case "url":
		return "must be a valid url"
	default:
		return "is invalid"
	}
}
